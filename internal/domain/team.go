package domain

import "time"

// Team represents a sub-group under a department.
type Team struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"departmentId"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TeamSummary adds the department name and member count.
type TeamSummary struct {
	Team
	DepartmentName string `json:"departmentName"`
	UserCount      int    `json:"userCount"`
}
