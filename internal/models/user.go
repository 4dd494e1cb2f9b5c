package models

// User is the authenticated account profile as returned by the backend.
// It is cached alongside the bearer token for display purposes only and is
// never validated or refreshed independently.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AuthResponse is the payload of a successful POST /auth/login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
