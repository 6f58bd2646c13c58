package service

import (
	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/repository"
)

// applyCustomerScope restricts filter to the customers actor may see. It
// returns false when the actor can see nothing at all, in which case the
// caller must not query.
func applyCustomerScope(filter *repository.CustomerFilter, actor *domain.User) bool {
	filter.RegisteredByID = nil
	filter.RegistrantDepartmentID = nil
	filter.RegistrantTeamID = nil

	switch {
	case actor.UserType.IsTopManagement():
		return true
	case actor.UserType == domain.UserTypeDepartmentManager:
		if actor.DepartmentID == nil {
			return false
		}
		id := *actor.DepartmentID
		filter.RegistrantDepartmentID = &id
		return true
	case actor.UserType == domain.UserTypeTeamLeader:
		if actor.TeamID == nil {
			return false
		}
		id := *actor.TeamID
		filter.RegistrantTeamID = &id
		return true
	case actor.UserType.IsRankAndFile():
		id := actor.ID
		filter.RegisteredByID = &id
		return true
	default:
		return false
	}
}

// CanViewCustomer is the row-level form of applyCustomerScope.
func CanViewCustomer(actor *domain.User, registrant domain.Registrant) bool {
	switch {
	case actor.UserType.IsTopManagement():
		return true
	case actor.UserType == domain.UserTypeDepartmentManager:
		return sameID(actor.DepartmentID, registrant.DepartmentID)
	case actor.UserType == domain.UserTypeTeamLeader:
		return sameID(actor.TeamID, registrant.TeamID)
	case actor.UserType.IsRankAndFile():
		return registrant.ID == actor.ID
	default:
		return false
	}
}

// chatTargetQuery describes who actor may open a conversation with.
func chatTargetQuery(actor *domain.User) (repository.UserQuery, bool) {
	exclude := actor.ID
	q := repository.UserQuery{ExcludeID: &exclude}

	switch {
	case actor.UserType.IsTopManagement():
		q.OrderByName = true
		return q, true
	case actor.UserType == domain.UserTypeDepartmentManager:
		level := actor.OrganizationLevel
		q.LevelBelow = &level
		return q, true
	case actor.UserType == domain.UserTypeTeamLeader:
		if actor.DepartmentID == nil {
			return q, false
		}
		q.DepartmentID = actor.DepartmentID
		q.Types = []domain.UserType{domain.UserTypeTeamLeader, domain.UserTypeDepartmentManager}
		return q, true
	case actor.UserType.IsRankAndFile():
		if actor.TeamID == nil {
			return q, false
		}
		q.TeamID = actor.TeamID
		return q, true
	default:
		return q, false
	}
}

// IsChatTarget is the single-user form of chatTargetQuery.
func IsChatTarget(actor, target *domain.User) bool {
	if actor.ID == target.ID {
		return false
	}
	switch {
	case actor.UserType.IsTopManagement():
		return true
	case actor.UserType == domain.UserTypeDepartmentManager:
		return target.OrganizationLevel < actor.OrganizationLevel
	case actor.UserType == domain.UserTypeTeamLeader:
		return sameID(actor.DepartmentID, target.DepartmentID) &&
			(target.UserType == domain.UserTypeTeamLeader || target.UserType == domain.UserTypeDepartmentManager)
	case actor.UserType.IsRankAndFile():
		return sameID(actor.TeamID, target.TeamID)
	default:
		return false
	}
}

// sameID is true only when both ids are set and equal.
func sameID(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

// recipientSet deduplicates ids in order, dropping blanks and exclude.
func recipientSet(exclude string, ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func userIDs(users []domain.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
