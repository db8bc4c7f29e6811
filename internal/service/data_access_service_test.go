package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/customer-data-service/internal/config"
	"github.com/spec-kit/customer-data-service/internal/domain"
	"github.com/spec-kit/customer-data-service/internal/events"
	"github.com/spec-kit/customer-data-service/internal/observability"
	"github.com/spec-kit/customer-data-service/internal/persistence"
	"github.com/spec-kit/customer-data-service/internal/repository"
)

var seedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	svc        *DataAccessService
	tickets    repository.TicketRepository
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := persistence.Open(ctx, config.DatabaseConfig{
		Driver:        config.DriverSQLite,
		DSN:           filepath.Join(t.TempDir(), "svc.sqlite"),
		MaxOpenConns:  4,
		BusyTimeoutMS: 5000,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, persistence.ResetSchema(ctx, db, seedTime, zap.NewNop()))

	f := &fixture{
		tickets:    repository.NewTicketRepository(db),
		metrics:    observability.NewMetrics(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	clock := &stepClock{now: seedTime}
	f.svc = NewDataAccessService(DataAccessDependencies{
		AccountRepo: repository.NewAccountRepository(db),
		TicketRepo:  f.tickets,
		Dispatcher:  f.dispatcher,
		Metrics:     f.metrics,
		Logger:      zap.NewNop(),
		Clock:       clock.Now,
	})
	return f
}

func (f *fixture) ticketCount(t *testing.T) int {
	t.Helper()
	n, err := f.tickets.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestExecuteUnknownOperation(t *testing.T) {
	f := newFixture(t)
	res := f.svc.Execute(context.Background(), "nonexistent_op", nil)
	assert.Equal(t, Result{Success: false, Error: "Unknown database operation: nonexistent_op"}, res)
}

func TestGetCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, seeded := range persistence.SeedAccounts {
		res := f.svc.Execute(ctx, OpGetCustomer, map[string]any{"customer_id": float64(seeded.Identifier)})
		require.True(t, res.Success, res.Error)
		account := res.Data.(*domain.Account)
		assert.Equal(t, seeded.Identifier, account.Identifier)
		assert.Equal(t, seeded.FullName, account.FullName)
		assert.Equal(t, seeded.ContactEmail, account.ContactEmail)
		assert.Equal(t, seeded.ContactPhone, account.ContactPhone)
		assert.Equal(t, seeded.AccountStatus, account.AccountStatus)
	}

	res := f.svc.Execute(ctx, OpGetCustomer, map[string]any{"customer_id": 777})
	assert.False(t, res.Success)
	assert.Equal(t, "Account with ID 777 not found", res.Error)
	assert.Nil(t, res.Data)
}

func TestGetCustomerParameterFaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{"missing id", nil, "Operation execution failed: INVALID_PARAMETER - customer_id parameter is required"},
		{"bad id", map[string]any{"customer_id": "one"}, "Operation execution failed: INVALID_PARAMETER - customer_id parameter must be an integer, got string"},
		{"extra", map[string]any{"customer_id": 1, "x": 1}, `Operation execution failed: INVALID_PARAMETER - get_customer got an unexpected parameter "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.svc.Execute(ctx, OpGetCustomer, tt.params)
			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Error)
		})
	}
}

func TestListCustomers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.svc.Execute(ctx, OpListCustomers, nil)
	require.True(t, res.Success)
	require.NotNil(t, res.TotalCount)
	assert.Equal(t, len(persistence.SeedAccounts), *res.TotalCount)

	res = f.svc.Execute(ctx, OpListCustomers, map[string]any{"status": "active", "limit": float64(2)})
	require.True(t, res.Success)
	accounts := res.Data.([]domain.Account)
	assert.Len(t, accounts, 2)
	assert.Equal(t, 2, *res.TotalCount)
	for _, a := range accounts {
		assert.Equal(t, "active", a.AccountStatus)
	}

	res = f.svc.Execute(ctx, OpListCustomers, map[string]any{"status": "archived"})
	require.True(t, res.Success)
	assert.Empty(t, res.Data)
	assert.NotNil(t, res.Data)
	assert.Equal(t, 0, *res.TotalCount)

	res = f.svc.Execute(ctx, OpListCustomers, map[string]any{"limit": 0, "status": nil})
	require.True(t, res.Success)
	assert.Equal(t, len(persistence.SeedAccounts), *res.TotalCount)
}

func TestUpdateCustomerNoValidFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.svc.Execute(ctx, OpGetCustomer, map[string]any{"customer_id": 2}).Data.(*domain.Account)

	for _, data := range []map[string]any{{}, {"identifier": 99, "nickname": "bobby"}} {
		res := f.svc.Execute(ctx, OpUpdateCustomer, map[string]any{"customer_id": 2, "data": data})
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "No valid fields provided")
	}

	after := f.svc.Execute(ctx, OpGetCustomer, map[string]any{"customer_id": 2}).Data.(*domain.Account)
	assert.Equal(t, before, after)
}

func TestUpdateCustomerAppliesOnlyWhitelistedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.svc.Execute(ctx, OpGetCustomer, map[string]any{"customer_id": 4}).Data.(*domain.Account)

	res := f.svc.Execute(ctx, OpUpdateCustomer, map[string]any{
		"customer_id": 4,
		"data": map[string]any{
			"contact_phone":      "444-000-0000",
			"identifier":         1,
			"creation_timestamp": "1999-01-01",
		},
	})
	require.True(t, res.Success, res.Error)
	after := res.Data.(*domain.Account)

	assert.Equal(t, "444-000-0000", after.ContactPhone)
	assert.Equal(t, before.Identifier, after.Identifier)
	assert.Equal(t, before.FullName, after.FullName)
	assert.Equal(t, before.ContactEmail, after.ContactEmail)
	assert.Equal(t, before.AccountStatus, after.AccountStatus)
	assert.Equal(t, before.CreationTimestamp, after.CreationTimestamp)
	assert.Greater(t, after.LastModifiedTimestamp, before.LastModifiedTimestamp)

	reread := f.svc.Execute(ctx, OpGetCustomer, map[string]any{"customer_id": 4}).Data.(*domain.Account)
	assert.Equal(t, after, reread)
}

func TestUpdateCustomerFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.svc.Execute(ctx, OpUpdateCustomer, map[string]any{"customer_id": 404, "data": map[string]any{"full_name": "Nobody"}})
	assert.False(t, res.Success)
	assert.Equal(t, "Account 404 not found or update failed.", res.Error)

	res = f.svc.Execute(ctx, OpUpdateCustomer, map[string]any{"customer_id": 1, "data": map[string]any{"full_name": nil}})
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid value for field full_name: expected a string", res.Error)

	res = f.svc.Execute(ctx, OpUpdateCustomer, map[string]any{"customer_id": 1, "data": "full_name=x"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Operation execution failed: INVALID_PARAMETER - data parameter must be of type")
}

func TestCreateTicketRejectsInvalidPriority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.ticketCount(t)

	for _, priority := range []string{"urgent", "CRITICAL", "", "hi"} {
		res := f.svc.Execute(ctx, OpCreateTicket, map[string]any{"customer_id": 1, "issue": "x", "priority": priority})
		assert.False(t, res.Success, priority)
		assert.Equal(t, "Priority must be 'low', 'medium', or 'high'.", res.Error)
	}
	assert.Equal(t, before, f.ticketCount(t))
}

func TestCreateTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var published []events.Event
	f.dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return errors.New("listener failure is not the caller's problem")
	})

	for _, tc := range []struct{ in, want string }{{"HIGH", "high"}, {"Low", "low"}, {"", ""}} {
		before := f.ticketCount(t)
		params := map[string]any{"customer_id": 5, "issue": "Printer on fire"}
		if tc.in != "" {
			params["priority"] = tc.in
		} else {
			tc.want = "medium"
		}
		res := f.svc.Execute(ctx, OpCreateTicket, params)
		require.True(t, res.Success, res.Error)
		ticket := res.Data.(*domain.Ticket)
		assert.Equal(t, "open", ticket.Status)
		assert.Equal(t, tc.want, ticket.PriorityLevel)
		assert.Equal(t, int64(5), ticket.AccountID)
		assert.NotZero(t, ticket.TicketID)
		assert.Equal(t, before+1, f.ticketCount(t))
	}
	assert.Len(t, published, 3)
	assert.NotEmpty(t, published[0].ID)
}

func TestGetCustomerHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.svc.Execute(ctx, OpGetCustomerHistory, map[string]any{"customer_id": 3})
	require.True(t, res.Success)
	assert.Equal(t, 0, *res.TotalCount)
	assert.Equal(t, []domain.Ticket{}, res.Data)

	first := f.svc.Execute(ctx, OpCreateTicket, map[string]any{"customer_id": 3, "issue": "first"}).Data.(*domain.Ticket)
	second := f.svc.Execute(ctx, OpCreateTicket, map[string]any{"customer_id": 3, "issue": "second"}).Data.(*domain.Ticket)

	res = f.svc.Execute(ctx, OpGetCustomerHistory, map[string]any{"customer_id": "3"})
	require.True(t, res.Success)
	history := res.Data.([]domain.Ticket)
	require.Len(t, history, 2)
	assert.Equal(t, second.TicketID, history[0].TicketID)
	assert.Equal(t, first.TicketID, history[1].TicketID)
	assert.GreaterOrEqual(t, history[0].SubmissionTimestamp, history[1].SubmissionTimestamp)
}

func TestEndToEndScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	account := f.svc.Execute(ctx, OpGetCustomer, map[string]any{"customer_id": 1}).Data.(*domain.Account)
	assert.Equal(t, "active", account.AccountStatus)

	res := f.svc.Execute(ctx, OpUpdateCustomer, map[string]any{"customer_id": 1, "data": map[string]any{"contact_email": "new@email.com"}})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "new@email.com", res.Data.(*domain.Account).ContactEmail)

	res = f.svc.Execute(ctx, OpCreateTicket, map[string]any{"customer_id": 1, "issue": "Billing issue", "priority": "high"})
	require.True(t, res.Success, res.Error)
	ticket := res.Data.(*domain.Ticket)
	assert.Equal(t, "high", ticket.PriorityLevel)
	assert.Equal(t, "open", ticket.Status)

	res = f.svc.Execute(ctx, OpGetCustomerHistory, map[string]any{"customer_id": 1})
	require.True(t, res.Success)
	history := res.Data.([]domain.Ticket)
	require.Len(t, history, 3)
	assert.Equal(t, ticket.TicketID, history[0].TicketID)
	assert.Equal(t, "Billing issue", history[0].Description)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OperationCount(OpCreateTicket, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OperationCount(OpGetCustomer, "success")))
}

type panickingAccounts struct {
	repository.AccountRepository
}

func (panickingAccounts) GetByID(context.Context, int64) (*domain.Account, error) {
	panic("driver exploded")
}

type failingTickets struct {
	repository.TicketRepository
}

type diskError struct{}

func (diskError) Error() string { return "disk I/O error" }

func (failingTickets) ListByAccount(context.Context, int64) ([]domain.Ticket, error) {
	return nil, diskError{}
}

func TestExecuteContainsFaults(t *testing.T) {
	svc := NewDataAccessService(DataAccessDependencies{
		AccountRepo: panickingAccounts{},
		TicketRepo:  failingTickets{},
	})
	ctx := context.Background()

	res := svc.Execute(ctx, OpGetCustomer, map[string]any{"customer_id": 1})
	assert.Equal(t, Result{Error: "Operation execution failed: panic - driver exploded"}, res)

	res = svc.Execute(ctx, OpGetCustomerHistory, map[string]any{"customer_id": 1})
	assert.Equal(t, Result{Error: "Operation execution failed: service.diskError - disk I/O error"}, res)
}

func TestExecuteHonoursConcurrencyBound(t *testing.T) {
	svc := NewDataAccessService(DataAccessDependencies{MaxConcurrent: 1})
	require.NoError(t, svc.limiter.Acquire(context.Background(), 1))
	defer svc.limiter.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := svc.Execute(ctx, OpGetCustomer, map[string]any{"customer_id": 1})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "context canceled")
}

func TestConcurrentUpdatesAllSucceed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = f.svc.Execute(ctx, OpUpdateCustomer, map[string]any{"customer_id": 1, "data": map[string]any{"contact_phone": "000"}})
				return
			}
			results[i] = f.svc.Execute(ctx, OpCreateTicket, map[string]any{"customer_id": 1, "issue": "parallel"})
		}(i)
	}
	wg.Wait()
	for _, res := range results {
		assert.True(t, res.Success, res.Error)
	}
}

func TestCatalogMatchesOperations(t *testing.T) {
	f := newFixture(t)
	catalog := Catalog()
	require.Len(t, catalog, len(f.svc.operations))
	for _, op := range catalog {
		_, ok := f.svc.operations[op.Name]
		assert.True(t, ok, op.Name)
		assert.NotEmpty(t, op.Description)
		require.NotNil(t, op.InputSchema, op.Name)
		for name := range op.Parameters {
			_, ok := op.InputSchema.Properties.Get(name)
			assert.True(t, ok, "%s.%s", op.Name, name)
		}
	}
	assert.Equal(t, []string{"customer_id", "issue"}, catalog[3].InputSchema.Required)
}
