package api

import "github.com/a2z-dev/a2z/shared/domain"

// Admin proxy DTOs. Field names follow the JSON contract consumed by the moderation console.

type UserMetadata struct {
	CreationTime   string `json:"creationTime"`
	LastSignInTime string `json:"lastSignInTime"`
}

type AdminUser struct {
	Uid         string       `json:"uid"`
	Email       string       `json:"email"`
	DisplayName string       `json:"displayName"`
	Disabled    bool         `json:"disabled"`
	Metadata    UserMetadata `json:"metadata"`
}

type BanUserRequest struct {
	Uid      string `json:"uid" validate:"required"`
	Disabled *bool  `json:"disabled" validate:"required"`
}

type BanUserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	RefId string `json:"refId,omitempty"`
}

type BansResponse struct {
	Bans []domain.BanRecord `json:"bans"`
}
