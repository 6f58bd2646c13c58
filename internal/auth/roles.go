package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/domain"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// Route allow-lists.
var (
	AdminRoles         = []domain.UserType{domain.UserTypeAdminStaff, domain.UserTypeGeneralHQManager}
	OrganizationRoles  = []domain.UserType{domain.UserTypeAdminStaff}
	GroupChatRoles     = []domain.UserType{domain.UserTypeAdminStaff, domain.UserTypeDepartmentManager, domain.UserTypeTeamLeader}
	ContentEditorRoles = []domain.UserType{domain.UserTypeAdminStaff}
	AllRoles           = domain.AllUserTypes
)

// RequireRoles ensures the current user has one of the allowed roles.
// An empty list admits any authenticated user.
func RequireRoles(allowed ...domain.UserType) fiber.Handler {
	allowedSet := make(map[domain.UserType]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return apperrors.NewUnauthorized("인증이 필요합니다.")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[user.UserType]; !exists {
			return apperrors.NewForbidden("접근 권한이 없습니다.")
		}
		return c.Next()
	}
}

// HasRole reports whether t is in the allow-list.
func HasRole(t domain.UserType, allowed []domain.UserType) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}
