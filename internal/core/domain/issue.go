package domain

import (
	"time"
)

// IssueStatus represents the lifecycle state of a reported issue.
type IssueStatus string

const (
	StatusPending      IssueStatus = "pending"
	StatusAcknowledged IssueStatus = "acknowledged"
	StatusInProgress   IssueStatus = "in_progress"
	StatusResolved     IssueStatus = "resolved"
	StatusRejected     IssueStatus = "rejected"
)

// IssueStatuses lists every status in lifecycle order.
var IssueStatuses = []IssueStatus{
	StatusPending,
	StatusAcknowledged,
	StatusInProgress,
	StatusResolved,
	StatusRejected,
}

// forwardTransitions is the forward-only policy applied when strict
// transitions are switched on. Terminal states have no entry.
var forwardTransitions = map[IssueStatus][]IssueStatus{
	StatusPending:      {StatusAcknowledged, StatusRejected},
	StatusAcknowledged: {StatusInProgress, StatusRejected},
	StatusInProgress:   {StatusResolved, StatusRejected},
}

// Valid reports whether s is one of the five known statuses.
func (s IssueStatus) Valid() bool {
	for _, known := range IssueStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the forward-only policy allows moving from
// s to next. Writing the current status again is always allowed.
func (s IssueStatus) CanTransitionTo(next IssueStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range forwardTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IssueCategory classifies the kind of civic problem.
type IssueCategory string

const (
	CategoryInfrastructure IssueCategory = "infrastructure"
	CategorySanitation     IssueCategory = "sanitation"
	CategoryUtilities      IssueCategory = "utilities"
	CategorySafety         IssueCategory = "safety"
	CategoryEnvironment    IssueCategory = "environment"
)

var IssueCategories = []IssueCategory{
	CategoryInfrastructure,
	CategorySanitation,
	CategoryUtilities,
	CategorySafety,
	CategoryEnvironment,
}

func (c IssueCategory) Valid() bool {
	for _, known := range IssueCategories {
		if c == known {
			return true
		}
	}
	return false
}

// IssuePriority is the triage priority of an issue.
type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
	PriorityUrgent IssuePriority = "urgent"
)

var IssuePriorities = []IssuePriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p IssuePriority) Valid() bool {
	for _, known := range IssuePriorities {
		if p == known {
			return true
		}
	}
	return false
}

// Location is where the issue was reported. Coordinates are [lat, lng].
type Location struct {
	Address     string    `json:"address" bson:"address"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// Reporter holds the contact details of the citizen who filed the issue.
type Reporter struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
}

// Feedback is the citizen's rating once an issue has been handled.
type Feedback struct {
	Rating  float64 `json:"rating" bson:"rating"`
	Comment string  `json:"comment" bson:"comment"`
}

// Issue is a citizen-reported civic problem.
type Issue struct {
	ID          string        `json:"id" bson:"-"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description" bson:"description"`
	Category    IssueCategory `json:"category" bson:"category"`
	Priority    IssuePriority `json:"priority" bson:"priority"`
	Status      IssueStatus   `json:"status" bson:"status"`
	Location    Location      `json:"location" bson:"location"`
	Reporter    Reporter      `json:"reporter" bson:"reporter"`
	AssignedTo  string        `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Department  string        `json:"department,omitempty" bson:"department,omitempty"`
	Images      []string      `json:"images,omitempty" bson:"images,omitempty"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt"`
	ResolvedAt  *time.Time    `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	Feedback    *Feedback     `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

// ApplyDefaults fills the fields a new issue must always carry.
func (i *Issue) ApplyDefaults() {
	if i.Priority == "" {
		i.Priority = PriorityMedium
	}
	if i.Status == "" {
		i.Status = StatusPending
	}
	if len(i.Location.Coordinates) == 0 {
		i.Location.Coordinates = []float64{0, 0}
	}
}

// IssuePatch carries a partial update. Nil fields are left untouched.
type IssuePatch struct {
	Title       *string
	Description *string
	Category    *IssueCategory
	Priority    *IssuePriority
	Status      *IssueStatus
	Location    *Location
	Reporter    *Reporter
	AssignedTo  *string
	Department  *string
	Images      []string
	ResolvedAt  *time.Time
	Feedback    *Feedback
}

// IsEmpty reports whether the patch changes nothing.
func (p IssuePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Priority == nil && p.Status == nil && p.Location == nil &&
		p.Reporter == nil && p.AssignedTo == nil && p.Department == nil &&
		p.Images == nil && p.ResolvedAt == nil && p.Feedback == nil
}

// IssueFilter narrows an issue listing. Empty fields do not filter.
type IssueFilter struct {
	Status     IssueStatus
	Category   IssueCategory
	Priority   IssuePriority
	Department string
	AssignedTo string
	// Search is a case-insensitive match on title, description or address.
	Search string
}
