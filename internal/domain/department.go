package domain

import "time"

// Department groups teams.
type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DepartmentSummary adds member and team counts.
type DepartmentSummary struct {
	Department
	UserCount int `json:"userCount"`
	TeamCount int `json:"teamCount"`
}
