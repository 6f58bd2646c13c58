package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/api/dto"
	"github.com/spec-kit/sales-service/internal/service"
)

// OrganizationHandler manages departments and teams.
type OrganizationHandler struct {
	org *service.OrganizationService
}

// NewOrganizationHandler constructs handler.
func NewOrganizationHandler(orgService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{org: orgService}
}

// Departments GET /api/organization/departments.
func (h *OrganizationHandler) Departments(c *fiber.Ctx) error {
	departments, err := h.org.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, departments)
}

// CreateDepartment POST /api/organization/departments.
func (h *OrganizationHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	dept, err := h.org.CreateDepartment(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return created(c, dept)
}

// Teams GET /api/organization/teams.
func (h *OrganizationHandler) Teams(c *fiber.Ctx) error {
	teams, err := h.org.ListTeams(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, teams)
}

// CreateTeam POST /api/organization/teams.
func (h *OrganizationHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.CreateTeamRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.org.CreateTeam(c.UserContext(), req.DepartmentID, req.Name)
	if err != nil {
		return err
	}
	return created(c, team)
}

// Tree GET /api/organization/tree.
func (h *OrganizationHandler) Tree(c *fiber.Ctx) error {
	tree, err := h.org.Tree(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, tree)
}
