package dto

import (
	"time"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/apperr"
	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
)

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email,min=5"`
	Name            string `json:"name" binding:"required,min=2,max=100"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// Validate covers the rules gin binding tags cannot express.
func (r RegisterRequest) Validate() []apperr.FieldError {
	var errs []apperr.FieldError
	if !passwordHasLetterAndDigit(r.Password) {
		errs = append(errs, apperr.FieldError{
			Field:   "password",
			Message: "Password must contain at least one letter and one number",
		})
	}
	if r.Password != r.ConfirmPassword {
		errs = append(errs, apperr.FieldError{
			Field:   "confirmPassword",
			Message: "Passwords do not match",
		})
	}
	return errs
}

func passwordHasLetterAndDigit(s string) bool {
	var letter, digit bool
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digit = true
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			letter = true
		}
	}
	return letter && digit
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the JSON body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UserResponse is the public shape of a user account.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserResponse maps a domain user; the password hash never leaves here.
func NewUserResponse(u dom.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// TokenResponse is returned by refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
