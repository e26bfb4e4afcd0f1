package domain

import "time"

// ActivityAction names what happened to an issue.
type ActivityAction string

const (
	ActionCreated       ActivityAction = "created"
	ActionUpdated       ActivityAction = "updated"
	ActionStatusChanged ActivityAction = "status_changed"
	ActionAssigned      ActivityAction = "assigned"
	ActionDeleted       ActivityAction = "deleted"
)

// IssueActivity is one entry of an issue's audit trail.
type IssueActivity struct {
	IssueID    string         `json:"issueId"`
	Action     ActivityAction `json:"action"`
	FromStatus IssueStatus    `json:"fromStatus,omitempty"`
	ToStatus   IssueStatus    `json:"toStatus,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	At         time.Time      `json:"at"`
}
