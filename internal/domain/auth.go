package domain

import "time"

// Identity is the token payload carried by every authenticated request.
type Identity struct {
	ID                string   `json:"id"`
	UserID            string   `json:"userId"`
	UserType          UserType `json:"userType"`
	OrganizationLevel int      `json:"organizationLevel"`
}

// IdentityOf derives the token payload for a user.
func IdentityOf(u *User) Identity {
	return Identity{ID: u.ID, UserID: u.UserID, UserType: u.UserType, OrganizationLevel: u.OrganizationLevel}
}

// Token is an issued access token.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
