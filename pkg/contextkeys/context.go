package contextkeys

type contextKey string

// DBContextKey holds the request scoped *gorm.DB (pool or an outer transaction).
const DBContextKey = contextKey("db")

// UserIDKey and RoleKey are the gin context keys set by the auth middleware.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)
