package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/api/dto"
	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/repository"
	"github.com/spec-kit/sales-service/internal/service"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

// CustomerHandler manages /api/customers.
type CustomerHandler struct {
	customers *service.CustomerService
}

// NewCustomerHandler constructs handler.
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customerService}
}

// List GET /api/customers.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	filter, err := parseCustomerQuery(c)
	if err != nil {
		return err
	}
	customers, err := h.customers.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	return respond(c, customers)
}

func parseCustomerQuery(c *fiber.Ctx) (repository.CustomerFilter, error) {
	filter := repository.CustomerFilter{
		Source:         optionalQuery(c, "source"),
		RegistrantName: optionalQuery(c, firstQueryKey(c, "registeredByName", "registrantName")),
		SortField:      c.Query("sortField"),
		SortOrder:      c.Query("sortOrder"),
		Limit:          queryInt(c, "limit"),
		Offset:         queryInt(c, "offset"),
	}
	if raw := optionalQuery(c, "status"); raw != nil {
		status := domain.CustomerStatus(strings.ToUpper(*raw))
		if !status.Valid() {
			return filter, apperrors.NewValidationError("잘못된 상태값입니다.", map[string]any{"status": *raw})
		}
		filter.Status = &status
	}
	if raw := optionalQuery(c, "potential"); raw != nil {
		potential := domain.Potential(strings.ToUpper(*raw))
		if !potential.Valid() {
			return filter, apperrors.NewValidationError("잘못된 가망도입니다.", map[string]any{"potential": *raw})
		}
		filter.Potential = &potential
	}
	from, err := parseDate(c.Query(firstQueryKey(c, "registrationDateStart", "startDate")), false)
	if err != nil {
		return filter, err
	}
	to, err := parseDate(c.Query(firstQueryKey(c, "registrationDateEnd", "endDate")), true)
	if err != nil {
		return filter, err
	}
	filter.CreatedFrom, filter.CreatedTo = from, to
	return filter, nil
}

// Get GET /api/customers/:id.
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	customer, err := h.customers.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, customer)
}

// Create POST /api/customers.
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateCustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.customers.Create(c.UserContext(), actor, service.CustomerCreateInput{
		Name:               req.Name,
		Phone:              req.Phone,
		Status:             req.Status,
		Potential:          req.Potential,
		Notes:              req.Notes,
		InterestedProperty: req.InterestedProperty,
		Source:             req.Source,
	})
	if err != nil {
		return err
	}
	return created(c, customer)
}

// Update PUT /api/customers/:id.
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.customers.Update(c.UserContext(), actor, c.Params("id"), service.CustomerUpdateInput{
		Name:               req.Name,
		Phone:              req.Phone,
		Status:             req.Status,
		Potential:          req.Potential,
		Notes:              req.Notes,
		InterestedProperty: req.InterestedProperty,
		Source:             req.Source,
	})
	if err != nil {
		return err
	}
	return respond(c, customer)
}

// Delete DELETE /api/customers/:id.
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.customers.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
