package models

// Passwords are capped at 72 bytes, the bcrypt input limit.

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
}

// AuthResponse is returned by register and login. Credits are not included;
// the account is created on first use.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
