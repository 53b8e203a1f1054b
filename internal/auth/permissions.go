package auth

import "errors"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// IsOwnerOrAdmin reports whether the caller may modify a resource owned by ownerID.
func IsOwnerOrAdmin(userID, role, ownerID string) bool {
	return userID != "" && (userID == ownerID || IsAdmin(role))
}

func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return errors.New("invalid role")
	}
}
