package models

import "time"

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null"`
	Username     string   `gorm:"type:varchar(150);not null"`
	PhoneNumber  string   `gorm:"type:varchar(15);index"`
	PasswordHash string   `gorm:"not null"`
	Avatar       string   // public URL
	AvatarKey    string   // storage key of Avatar
	Biography    string   `gorm:"type:text"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'user'"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// RefreshToken tracks issued refresh JWTs by jti so they can be rotated and revoked.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index"`
	JTI       string    `gorm:"column:jti;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
