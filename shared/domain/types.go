package domain

type (
	Email      = string
	Password   = string
	IdentityId = string
	BusinessId = string
	OrderId    = string
	Slug       = string
)
