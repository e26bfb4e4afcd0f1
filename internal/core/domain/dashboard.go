package domain

// DashboardStats is the aggregate view rendered by the admin dashboard.
type DashboardStats struct {
	TotalIssues         int64   `json:"totalIssues"`
	PendingIssues       int64   `json:"pendingIssues"`
	InProgressIssues    int64   `json:"inProgressIssues"`
	ResolvedIssues      int64   `json:"resolvedIssues"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	CitizenSatisfaction float64 `json:"citizenSatisfaction"`
	ActiveOfficers      int64   `json:"activeOfficers"`
}

type CategoryCount struct {
	Category IssueCategory `json:"category"`
	Count    int64         `json:"count"`
}

type DepartmentPerformance struct {
	Department string `json:"department"`
	Total      int64  `json:"total"`
	Resolved   int64  `json:"resolved"`
}
