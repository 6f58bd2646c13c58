package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	"github.com/spec-kit/sales-service/internal/repository"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

const (
	msgDuplicatePhone    = "이미 동일한 연락처로 등록된 고객이 존재합니다."
	msgCustomerNotFound  = "고객을 찾을 수 없습니다."
	msgCustomerForbidden = "해당 고객에 대한 권한이 없습니다."
)

// CustomerService coordinates customer workflows under role-scoped visibility.
type CustomerService struct {
	customers  repository.CustomerRepository
	activity   *ActivityLogService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CustomerDependencies bundles collaborators for the customer service.
type CustomerDependencies struct {
	CustomerRepo repository.CustomerRepository
	Activity     *ActivityLogService
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// CustomerCreateInput describes customer creation payload.
type CustomerCreateInput struct {
	Name               string
	Phone              string
	Status             *domain.CustomerStatus
	Potential          *domain.Potential
	Notes              *string
	InterestedProperty *string
	Source             *string
}

// CustomerUpdateInput carries only the fields the caller wants to change.
// A pointer to an empty string clears an optional field.
type CustomerUpdateInput struct {
	Name               *string
	Phone              *string
	Status             *domain.CustomerStatus
	Potential          *domain.Potential
	Notes              *string
	InterestedProperty *string
	Source             *string
}

// NewCustomerService constructs the service.
func NewCustomerService(deps CustomerDependencies) *CustomerService {
	return &CustomerService{
		customers:  deps.CustomerRepo,
		activity:   deps.Activity,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

func customerSnapshot(c *domain.Customer) Snapshot {
	var potential any
	if c.Potential != nil {
		potential = string(*c.Potential)
	}
	return Snapshot{
		"name":               c.Name,
		"phone":              c.Phone,
		"status":             string(c.Status),
		"potential":          potential,
		"notes":              optional(c.Notes),
		"interestedProperty": optional(c.InterestedProperty),
		"source":             optional(c.Source),
	}
}

// Create registers a customer owned by actor.
func (s *CustomerService) Create(ctx context.Context, actor *domain.User, input CustomerCreateInput) (*domain.Customer, error) {
	name, phone := strings.TrimSpace(input.Name), strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, apperrors.NewValidationError("고객 이름과 연락처는 필수입니다.", nil)
	}
	status := domain.CustomerStatusRegistered
	if input.Status != nil {
		status = *input.Status
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("잘못된 고객 상태입니다.", map[string]any{"status": status})
	}
	potential, err := normalizePotential(input.Potential)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		Name:               name,
		Phone:              phone,
		Status:             status,
		Potential:          potential,
		Notes:              trimmedOrNil(input.Notes),
		InterestedProperty: trimmedOrNil(input.InterestedProperty),
		Source:             trimmedOrNil(input.Source),
		RegisteredByID:     actor.ID,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict(msgDuplicatePhone, map[string]any{"phone": phone})
		}
		return nil, err
	}

	s.activity.Record(ctx, actor, domain.ActivityCreate, domain.EntityCustomer, customer.ID,
		fmt.Sprintf("고객 %s을(를) 등록했습니다.", customer.Name))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventCustomerCreated,
		ActorID: actor.ID,
		Payload: events.CustomerCreatedPayload{
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			CreatorName:  actor.Name,
			ManagerID:    actor.ManagerID,
		},
	})
	return customer, nil
}

// List returns the customers visible to actor, narrowed by filter. The
// visibility scope always applies; filter never widens it.
func (s *CustomerService) List(ctx context.Context, actor *domain.User, filter repository.CustomerFilter) ([]domain.CustomerWithRegistrant, error) {
	if !applyCustomerScope(&filter, actor) {
		return []domain.CustomerWithRegistrant{}, nil
	}
	return s.customers.List(ctx, filter)
}

// Get returns a customer the actor is allowed to see.
func (s *CustomerService) Get(ctx context.Context, actor *domain.User, id string) (*domain.CustomerWithRegistrant, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgCustomerNotFound)
	}
	if !CanViewCustomer(actor, customer.RegisteredBy) {
		return nil, apperrors.NewForbidden(msgCustomerForbidden)
	}
	return customer, nil
}

// History returns the customer's activity trail to anyone allowed to see the customer.
func (s *CustomerService) History(ctx context.Context, actor *domain.User, id string) ([]domain.ActivityLog, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.activity.ListForEntity(ctx, domain.EntityCustomer, id)
}

// Update applies the present fields, logs one entry per changed field and
// announces status changes.
func (s *CustomerService) Update(ctx context.Context, actor *domain.User, id string, input CustomerUpdateInput) (*domain.CustomerWithRegistrant, error) {
	current, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := customerSnapshot(&current.Customer)
	fields, err := applyCustomerUpdate(&current.Customer, input)
	if err != nil {
		return nil, err
	}

	changes := Diff(fields, before, customerSnapshot(&current.Customer))
	if len(changes) == 0 {
		return current, nil
	}
	if err := s.customers.Update(ctx, &current.Customer); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict(msgDuplicatePhone, map[string]any{"phone": current.Phone})
		}
		return nil, notFoundAs(err, msgCustomerNotFound)
	}
	s.activity.RecordChanges(ctx, actor, domain.EntityCustomer, current.ID, changes)

	for _, ch := range changes {
		if ch.Field != "status" {
			continue
		}
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:    events.EventCustomerStatusChanged,
			ActorID: actor.ID,
			Payload: events.CustomerStatusChangedPayload{
				CustomerID:   current.ID,
				CustomerName: current.Name,
				RegistrantID: current.RegisteredBy.ID,
				ManagerID:    current.RegisteredBy.ManagerID,
				OldStatus:    domain.CustomerStatus(fmt.Sprint(ch.From)),
				NewStatus:    current.Status,
			},
		})
	}
	return current, nil
}

// applyCustomerUpdate copies the present fields onto c and returns their names.
func applyCustomerUpdate(c *domain.Customer, input CustomerUpdateInput) ([]string, error) {
	var fields []string
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("고객 이름은 비워둘 수 없습니다.", nil)
		}
		c.Name = name
		fields = append(fields, "name")
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, apperrors.NewValidationError("연락처는 비워둘 수 없습니다.", nil)
		}
		c.Phone = phone
		fields = append(fields, "phone")
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("잘못된 고객 상태입니다.", map[string]any{"status": *input.Status})
		}
		c.Status = *input.Status
		fields = append(fields, "status")
	}
	if input.Potential != nil {
		p, err := normalizePotential(input.Potential)
		if err != nil {
			return nil, err
		}
		c.Potential = p
		fields = append(fields, "potential")
	}
	if input.Notes != nil {
		c.Notes = trimmedOrNil(input.Notes)
		fields = append(fields, "notes")
	}
	if input.InterestedProperty != nil {
		c.InterestedProperty = trimmedOrNil(input.InterestedProperty)
		fields = append(fields, "interestedProperty")
	}
	if input.Source != nil {
		c.Source = trimmedOrNil(input.Source)
		fields = append(fields, "source")
	}
	return fields, nil
}

func normalizePotential(p *domain.Potential) (*domain.Potential, error) {
	if p == nil || *p == "" {
		return nil, nil
	}
	v := domain.Potential(strings.ToUpper(string(*p)))
	if !v.Valid() {
		return nil, apperrors.NewValidationError("잘못된 가망 등급입니다.", map[string]any{"potential": *p})
	}
	return &v, nil
}

// Delete removes a customer the actor is allowed to see.
func (s *CustomerService) Delete(ctx context.Context, actor *domain.User, id string) error {
	current, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.customers.Delete(ctx, id); err != nil {
		return notFoundAs(err, msgCustomerNotFound)
	}
	s.activity.Record(ctx, actor, domain.ActivityDelete, domain.EntityCustomer, id,
		fmt.Sprintf("고객 %s을(를) 삭제했습니다.", current.Name))
	return nil
}
