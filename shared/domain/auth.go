package domain

import "time"

// Session is the signed-in state handed to a client.
type Session struct {
	IdentityId    IdentityId `json:"identityId"`
	Email         Email      `json:"email"`
	DisplayName   string     `json:"displayName"`
	EmailVerified bool       `json:"emailVerified"`
	Admin         bool       `json:"admin"`
}

// Identity is the credential store's own record of an account.
type Identity struct {
	Id             IdentityId
	Email          Email
	DisplayName    string
	PassHash       string
	Provider       string // "password" or an OAuth provider name
	ProviderUserId string
	Disabled       bool
	EmailVerified  bool
	CreatedAt      time.Time
	LastSignInAt   *time.Time
}

const PasswordProvider = "password"
