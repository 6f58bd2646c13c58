package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusPending   UserStatus = "PENDING"
	UserStatusApproved  UserStatus = "APPROVED"
	UserStatusRejected  UserStatus = "REJECTED"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusApproved, UserStatusRejected, UserStatusSuspended:
		return true
	}
	return false
}

// UserType is the organizational role of a user.
type UserType string

const (
	UserTypeAdminStaff        UserType = "ADMIN_STAFF"
	UserTypeMiddleManager     UserType = "MIDDLE_MANAGER"
	UserTypeGeneralHQManager  UserType = "GENERAL_HQ_MANAGER"
	UserTypeDepartmentManager UserType = "DEPARTMENT_MANAGER"
	UserTypeTeamLeader        UserType = "TEAM_LEADER"
	UserTypeSalesStaff        UserType = "SALES_STAFF"
	UserTypeRealEstate        UserType = "REAL_ESTATE"
	UserTypePartnerStaff      UserType = "PARTNER_STAFF"
)

// AllUserTypes lists every role, highest authority first.
var AllUserTypes = []UserType{
	UserTypeAdminStaff,
	UserTypeMiddleManager,
	UserTypeGeneralHQManager,
	UserTypeDepartmentManager,
	UserTypeTeamLeader,
	UserTypeSalesStaff,
	UserTypeRealEstate,
	UserTypePartnerStaff,
}

var organizationLevels = map[UserType]int{
	UserTypeAdminStaff:        1,
	UserTypeMiddleManager:     2,
	UserTypeGeneralHQManager:  3,
	UserTypeDepartmentManager: 4,
	UserTypeTeamLeader:        5,
	UserTypeSalesStaff:        6,
	UserTypeRealEstate:        6,
	UserTypePartnerStaff:      6,
}

// Valid reports whether t is a known role.
func (t UserType) Valid() bool {
	_, ok := organizationLevels[t]
	return ok
}

// OrganizationLevel returns the rank for a role. Lower means more authority.
func (t UserType) OrganizationLevel() int {
	if lvl, ok := organizationLevels[t]; ok {
		return lvl
	}
	return 6
}

// IsTopManagement is true for roles that see the whole organization.
func (t UserType) IsTopManagement() bool {
	return t == UserTypeAdminStaff || t == UserTypeMiddleManager || t == UserTypeGeneralHQManager
}

// IsRankAndFile is true for front-line roles.
func (t UserType) IsRankAndFile() bool {
	return t == UserTypeSalesStaff || t == UserTypeRealEstate || t == UserTypePartnerStaff
}

// User is an account inside the sales organization.
type User struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	Email               *string    `json:"email,omitempty"`
	PasswordHash        string     `json:"-"`
	Name                string     `json:"name"`
	Phone               string     `json:"phone"`
	Status              UserStatus `json:"status"`
	UserType            UserType   `json:"userType"`
	OrganizationLevel   int        `json:"organizationLevel"`
	OrganizationRequest *string    `json:"organizationRequest,omitempty"`
	DepartmentID        *string    `json:"departmentId,omitempty"`
	TeamID              *string    `json:"teamId,omitempty"`
	ManagerID           *string    `json:"managerId,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// UserSummary is a user row enriched for listings.
type UserSummary struct {
	User
	DepartmentName *string `json:"departmentName,omitempty"`
	TeamName       *string `json:"teamName,omitempty"`
	ManagerName    *string `json:"managerName,omitempty"`
	CustomerCount  int     `json:"customerCount"`
}
