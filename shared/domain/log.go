package domain

import "time"

// LogEntry is one reported error, addressable by its ticket RefId.
type LogEntry struct {
	RefId          string         `json:"refId"`
	Timestamp      time.Time      `json:"timestamp"`
	Message        string         `json:"message"`
	Stack          string         `json:"stack"`
	Type           string         `json:"type"`
	URL            string         `json:"url"`
	UserAgent      string         `json:"userAgent"`
	UserId         string         `json:"userId"`
	UserEmail      string         `json:"userEmail"`
	AdditionalInfo map[string]any `json:"additionalInfo,omitempty"`
}
