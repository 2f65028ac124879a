package domain

import "time"

const DefaultBanReason = "Violated terms"

type BanRecord struct {
	Id       IdentityId `json:"id"`
	Email    Email      `json:"email"`
	Reason   string     `json:"reason"`
	BannedAt time.Time  `json:"bannedAt"`
	BannedBy string     `json:"bannedBy"`
}

type TargetType string

const (
	TargetUser     TargetType = "user"
	TargetBusiness TargetType = "business"
)

type ActionKind string

const (
	ActionBan     ActionKind = "Ban"
	ActionUnban   ActionKind = "Unban"
	ActionSuspend ActionKind = "Suspend"
	ActionRestore ActionKind = "Restore"
)

// PendingAction is a moderation action waiting for operator confirmation.
type PendingAction struct {
	TargetId   string     `json:"targetId"`
	Kind       ActionKind `json:"kind"`
	TargetType TargetType `json:"targetType"`
}
