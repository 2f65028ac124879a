package domain

import "time"

type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
)

// UserProfile is the application-level record about an identity.
type UserProfile struct {
	Id        IdentityId `json:"id"`
	Email     Email      `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ProfileFields is a partial profile. Nil fields are left untouched on write.
type ProfileFields struct {
	Email  *Email
	Name   *string
	Role   *Role
	Status *UserStatus
}
