package domain

// LoginRequest is the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LogoutRequest is the logout request body.
type LogoutRequest struct {
	Token string `json:"token" binding:"required"`
}

// AuthResponse is the envelope returned by the auth endpoints. Token and
// User are present on successful login/registration only.
type AuthResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
	User    *UserView `json:"user,omitempty"`
}
