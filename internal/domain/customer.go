package domain

import "time"

// CustomerStatus tracks a lead through the sales funnel.
type CustomerStatus string

const (
	CustomerStatusRegistered CustomerStatus = "REGISTERED"
	CustomerStatusVisited    CustomerStatus = "VISITED"
	CustomerStatusConsulted  CustomerStatus = "CONSULTED"
	CustomerStatusContracted CustomerStatus = "CONTRACTED"
	CustomerStatusCancelled  CustomerStatus = "CANCELLED"
)

var customerStatusLabels = map[CustomerStatus]string{
	CustomerStatusRegistered: "등록",
	CustomerStatusVisited:    "방문",
	CustomerStatusConsulted:  "상담",
	CustomerStatusContracted: "계약",
	CustomerStatusCancelled:  "취소",
}

// Valid reports whether s is a known status.
func (s CustomerStatus) Valid() bool {
	_, ok := customerStatusLabels[s]
	return ok
}

// Label returns the Korean display name.
func (s CustomerStatus) Label() string {
	if l, ok := customerStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Potential grades how likely a customer is to contract.
type Potential string

const (
	PotentialHigh   Potential = "HIGH"
	PotentialMedium Potential = "MEDIUM"
	PotentialLow    Potential = "LOW"
)

// Valid reports whether p is a known grade.
func (p Potential) Valid() bool {
	return p == PotentialHigh || p == PotentialMedium || p == PotentialLow
}

// Customer is a lead owned by the user who registered it.
type Customer struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Phone              string         `json:"phone"`
	Status             CustomerStatus `json:"status"`
	Potential          *Potential     `json:"potential,omitempty"`
	Notes              *string        `json:"notes,omitempty"`
	InterestedProperty *string        `json:"interestedProperty,omitempty"`
	Source             *string        `json:"source,omitempty"`
	RegisteredByID     string         `json:"registeredById"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// Registrant is the slice of the registering user that visibility and
// notifications depend on.
type Registrant struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	UserType     UserType `json:"userType"`
	DepartmentID *string  `json:"departmentId,omitempty"`
	TeamID       *string  `json:"teamId,omitempty"`
	ManagerID    *string  `json:"managerId,omitempty"`
}

// CustomerWithRegistrant is the list/detail projection.
type CustomerWithRegistrant struct {
	Customer
	RegisteredBy Registrant `json:"registeredBy"`
}

// StatusCount is one bucket of CustomerStats.ByStatus.
type StatusCount struct {
	Status CustomerStatus `json:"status"`
	Count  int            `json:"count"`
}

// SourceCount is one bucket of CustomerStats.BySource. A nil source groups
// customers without one.
type SourceCount struct {
	Source *string `json:"source"`
	Count  int     `json:"count"`
}

// CustomerStats aggregates a registrant's customers.
type CustomerStats struct {
	ByStatus []StatusCount `json:"byStatus"`
	BySource []SourceCount `json:"bySource"`
}
