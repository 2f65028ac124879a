package api

import "github.com/a2z-dev/a2z/shared/domain"

type StageRequest struct {
	TargetType domain.TargetType `json:"targetType" validate:"required,oneof=user business"`
	TargetId   string            `json:"targetId" validate:"required"`
}

type UserRow struct {
	AdminUser
	Action string `json:"action"`
	Staged bool   `json:"staged"`
}

type BusinessRow struct {
	domain.Business
	Badge  string `json:"badge"`
	Action string `json:"action,omitempty"`
	Staged bool   `json:"staged"`
}

type ConsoleView struct {
	Tab        string                `json:"tab"`
	Users      []UserRow             `json:"users"`
	Businesses []BusinessRow         `json:"businesses"`
	ErrorLogs  []domain.LogEntry     `json:"errorLogs"`
	Bans       []domain.BanRecord    `json:"bans"`
	Staged     *domain.PendingAction `json:"staged,omitempty"`
	Executing  bool                  `json:"executing"`
	Audit      []string              `json:"audit"`
}

type ConfirmResponse struct {
	Applied bool        `json:"applied"`
	Error   string      `json:"error,omitempty"`
	View    ConsoleView `json:"view"`
}
