package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/events"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

type customerFixture struct {
	svc        *CustomerService
	customers  *fakeCustomerRepo
	logs       *fakeActivityRepo
	dispatcher *recordingDispatcher
	owner      *domain.User
}

func newCustomerFixture(t *testing.T) *customerFixture {
	t.Helper()
	owner := newUser("owner", domain.UserTypeSalesStaff, strPtr("d1"), strPtr("t1"))
	owner.ManagerID = strPtr("boss")
	boss := newUser("boss", domain.UserTypeTeamLeader, strPtr("d1"), strPtr("t1"))
	users := newFakeUserRepo(owner, boss)
	f := &customerFixture{
		customers:  newFakeCustomerRepo(users),
		logs:       &fakeActivityRepo{},
		dispatcher: newRecordingDispatcher(),
		owner:      owner,
	}
	f.svc = NewCustomerService(CustomerDependencies{
		CustomerRepo: f.customers,
		Activity:     NewActivityLogService(f.logs, zap.NewNop()),
		Dispatcher:   f.dispatcher,
		Logger:       zap.NewNop(),
	})
	return f
}

func TestDiffStrictInequality(t *testing.T) {
	before := Snapshot{"name": "kim", "status": "REGISTERED", "notes": nil}
	after := Snapshot{"name": "kim", "status": "VISITED", "notes": "call back"}

	changes := Diff([]string{"name", "status", "notes"}, before, after)
	require.Len(t, changes, 2)
	assert.Equal(t, domain.FieldChange{Field: "status", From: "REGISTERED", To: "VISITED"}, changes[0])
	assert.Equal(t, domain.FieldChange{Field: "notes", From: nil, To: "call back"}, changes[1])

	assert.Empty(t, Diff([]string{"name"}, before, after))
	assert.Empty(t, Diff(nil, before, after))
}

func TestCustomerCreateLogsAndPublishes(t *testing.T) {
	f := newCustomerFixture(t)
	c, err := f.svc.Create(context.Background(), f.owner, CustomerCreateInput{Name: " kim ", Phone: "010"})
	require.NoError(t, err)
	assert.Equal(t, "kim", c.Name)
	assert.Equal(t, domain.CustomerStatusRegistered, c.Status)

	rows := f.logs.rows()
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ActivityCreate, rows[0].Action)
	assert.Equal(t, domain.EntityCustomer, rows[0].EntityType)

	published := f.dispatcher.ofType(events.EventCustomerCreated)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.CustomerCreatedPayload)
	assert.Equal(t, "boss", *payload.ManagerID)
}

func TestCustomerCreateRequiresNameAndPhone(t *testing.T) {
	f := newCustomerFixture(t)
	_, err := f.svc.Create(context.Background(), f.owner, CustomerCreateInput{Name: "kim"})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCustomerUpdateWithoutChangesWritesNothing(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.owner, CustomerCreateInput{Name: "kim", Phone: "010"})
	require.NoError(t, err)
	logsBefore := len(f.logs.rows())

	status := domain.CustomerStatusRegistered
	_, err = f.svc.Update(ctx, f.owner, c.ID, CustomerUpdateInput{Name: strPtr("kim"), Status: &status})
	require.NoError(t, err)

	assert.Len(t, f.logs.rows(), logsBefore)
	assert.Zero(t, f.customers.updates)
	assert.Empty(t, f.dispatcher.ofType(events.EventCustomerStatusChanged))
}

func TestCustomerUpdateLogsEachChangedField(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.owner, CustomerCreateInput{Name: "kim", Phone: "010"})
	require.NoError(t, err)
	logsBefore := len(f.logs.rows())
	batchesBefore := len(f.logs.batches)

	status := domain.CustomerStatusContracted
	potential := domain.PotentialHigh
	_, err = f.svc.Update(ctx, f.owner, c.ID, CustomerUpdateInput{
		Name:      strPtr("kim"),
		Status:    &status,
		Potential: &potential,
		Notes:     strPtr("signed"),
	})
	require.NoError(t, err)

	rows := f.logs.rows()[logsBefore:]
	require.Len(t, rows, 3)
	assert.Len(t, f.logs.batches, batchesBefore+1, "changes are written in one batch")
	byField := map[string]domain.ActivityDetails{}
	for _, r := range rows {
		assert.Equal(t, domain.ActivityUpdate, r.Action)
		byField[r.Details.Field] = r.Details
	}
	assert.Equal(t, "REGISTERED", byField["status"].From)
	assert.Equal(t, "CONTRACTED", byField["status"].To)
	assert.Nil(t, byField["potential"].From)
	assert.Equal(t, "HIGH", byField["potential"].To)
	assert.Equal(t, "signed", byField["notes"].To)

	published := f.dispatcher.ofType(events.EventCustomerStatusChanged)
	require.Len(t, published, 1)
	payload := published[0].Payload.(events.CustomerStatusChangedPayload)
	assert.Equal(t, domain.CustomerStatusRegistered, payload.OldStatus)
	assert.Equal(t, domain.CustomerStatusContracted, payload.NewStatus)
	assert.Equal(t, "owner", payload.RegistrantID)
}

func TestCustomerGetForbiddenForOtherStaff(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.owner, CustomerCreateInput{Name: "kim", Phone: "010"})
	require.NoError(t, err)

	outsider := newUser("outsider", domain.UserTypeSalesStaff, strPtr("d1"), strPtr("t1"))
	_, err = f.svc.Get(ctx, outsider, c.ID)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)

	_, err = f.svc.Get(ctx, f.owner, "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestCustomerDeleteRecordsLog(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.owner, CustomerCreateInput{Name: "kim", Phone: "010"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.owner, c.ID))
	rows := f.logs.rows()
	assert.Equal(t, domain.ActivityDelete, rows[len(rows)-1].Action)
	_, err = f.svc.Get(ctx, f.owner, c.ID)
	assert.True(t, apperrors.ToDomainError(err).HTTPStatus == 404)
}

func TestCustomerHistoryFollowsVisibility(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, f.owner, CustomerCreateInput{Name: "kim", Phone: "010"})
	require.NoError(t, err)

	logs, err := f.svc.History(ctx, f.owner, c.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.ActivityCreate, logs[0].Action)

	leader := newUser("boss", domain.UserTypeTeamLeader, strPtr("d1"), strPtr("t1"))
	logs, err = f.svc.History(ctx, leader, c.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	outsider := newUser("outsider", domain.UserTypeSalesStaff, strPtr("d1"), strPtr("t1"))
	_, err = f.svc.History(ctx, outsider, c.ID)
	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)

	_, err = f.svc.History(ctx, f.owner, "missing")
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}
