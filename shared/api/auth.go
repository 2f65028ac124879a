package api

import "github.com/a2z-dev/a2z/shared/domain"

// Request DTOs

type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	ReturnURL string `json:"returnUrl"`
	Store     string `json:"store"` // slug of the store the buyer was browsing
}

type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	ReturnURL       string `json:"returnUrl"`
	Store           string `json:"store"`
}

type SellerRegisterRequest struct {
	OwnerName       string `json:"ownerName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	BusinessName    string `json:"businessName" validate:"required"`
	Slug            string `json:"slug"`
}

type AdminSignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Secret   string `json:"secret" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Response DTOs

type AuthResponse struct {
	Session  *domain.Session `json:"session"`
	Redirect string          `json:"redirect"`
}

type MessageResponse struct {
	Message  string `json:"message"`
	BackLink string `json:"backLink,omitempty"`
}

type SlugResponse struct {
	Slug string `json:"slug"`
}
