package domain

import "time"

type BusinessStatus string

const (
	BusinessPending   BusinessStatus = "pending"
	BusinessActive    BusinessStatus = "active"
	BusinessSuspended BusinessStatus = "suspended"
)

func (s BusinessStatus) Valid() bool {
	switch s {
	case BusinessPending, BusinessActive, BusinessSuspended:
		return true
	}
	return false
}

type Business struct {
	Id         BusinessId     `json:"id"`
	Name       string         `json:"businessName"`
	Slug       Slug           `json:"slug"`
	OwnerId    IdentityId     `json:"ownerId"`
	OwnerEmail Email          `json:"ownerEmail"`
	ThemeColor string         `json:"themeColor"`
	Status     BusinessStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
