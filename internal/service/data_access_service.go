package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/spec-kit/customer-data-service/internal/domain"
	"github.com/spec-kit/customer-data-service/internal/events"
	"github.com/spec-kit/customer-data-service/internal/observability"
	"github.com/spec-kit/customer-data-service/internal/repository"
	apperrors "github.com/spec-kit/customer-data-service/pkg/util/errorutil"
)

// Operation names recognised by the dispatcher.
const (
	OpGetCustomer        = "get_customer"
	OpListCustomers      = "list_customers"
	OpUpdateCustomer     = "update_customer"
	OpCreateTicket       = "create_ticket"
	OpGetCustomerHistory = "get_customer_history"
)

const defaultListLimit = 100

// Result is the uniform envelope every operation returns.
type Result struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	TotalCount *int   `json:"total_count,omitempty"`
}

func success(data any) Result {
	return Result{Success: true, Data: data}
}

func successList(data any, count int) Result {
	return Result{Success: true, Data: data, TotalCount: &count}
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// executionFailure renders a fault raised while running a known operation.
func executionFailure(err error) Result {
	var msg string
	if de := apperrors.ToDomainError(err); de != nil && de.Code != apperrors.CodeInternal {
		msg = de.Message
	} else {
		msg = err.Error()
	}
	return failure("Operation execution failed: %s - %s", apperrors.Kind(err), msg)
}

type handlerFunc func(ctx context.Context, params map[string]any) (Result, error)

type operation struct {
	params  []string
	handler handlerFunc
}

// DataAccessService dispatches named operations against the record store.
type DataAccessService struct {
	accounts   repository.AccountRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
	limiter    *semaphore.Weighted
	operations map[string]operation
}

// DataAccessDependencies bundles collaborators for the service.
type DataAccessDependencies struct {
	AccountRepo   repository.AccountRepository
	TicketRepo    repository.TicketRepository
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	Clock         func() time.Time
	MaxConcurrent int
}

// NewDataAccessService constructs the dispatcher.
func NewDataAccessService(deps DataAccessDependencies) *DataAccessService {
	s := &DataAccessService{
		accounts:   deps.AccountRepo,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if deps.MaxConcurrent > 0 {
		s.limiter = semaphore.NewWeighted(int64(deps.MaxConcurrent))
	}
	s.operations = map[string]operation{
		OpGetCustomer:        {params: []string{"customer_id"}, handler: s.getCustomer},
		OpListCustomers:      {params: []string{"status", "limit"}, handler: s.listCustomers},
		OpUpdateCustomer:     {params: []string{"customer_id", "data"}, handler: s.updateCustomer},
		OpCreateTicket:       {params: []string{"customer_id", "issue", "priority"}, handler: s.createTicket},
		OpGetCustomerHistory: {params: []string{"customer_id"}, handler: s.getCustomerHistory},
	}
	return s
}

// Execute runs the named operation. It never returns a raw fault: unknown
// names, validation problems, store errors and panics all become envelopes.
func (s *DataAccessService) Execute(ctx context.Context, name string, params map[string]any) (result Result) {
	op, ok := s.operations[name]
	if !ok {
		s.metrics.RecordOperation("unknown", "failure")
		return failure("Unknown database operation: %s", name)
	}
	if params == nil {
		params = map[string]any{}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("operation panicked", zap.String("operation", name), zap.Any("panic", r))
			result = failure("Operation execution failed: panic - %v", r)
		}
		outcome := "success"
		if !result.Success {
			outcome = "failure"
			s.logger.Warn("operation failed", zap.String("operation", name), zap.String("error", result.Error))
		}
		s.metrics.RecordOperation(name, outcome)
	}()

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx, 1); err != nil {
			return executionFailure(err)
		}
		defer s.limiter.Release(1)
	}

	s.logger.Debug("executing operation", zap.String("operation", name), zap.Any("params", params))
	if err := rejectUnknown(name, params, op.params); err != nil {
		return executionFailure(err)
	}
	res, err := op.handler(ctx, params)
	if err != nil {
		return executionFailure(err)
	}
	return res
}

func (s *DataAccessService) getCustomer(ctx context.Context, params map[string]any) (Result, error) {
	id, err := ExtractInt(params, "customer_id")
	if err != nil {
		return Result{}, err
	}
	account, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return failure("Account with ID %d not found", id), nil
	}
	if err != nil {
		return Result{}, err
	}
	return success(account), nil
}

func (s *DataAccessService) listCustomers(ctx context.Context, params map[string]any) (Result, error) {
	status, err := ExtractOptional(params, "status", "")
	if err != nil {
		return Result{}, err
	}
	limit, err := ExtractOptionalInt(params, "limit", defaultListLimit)
	if err != nil {
		return Result{}, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	filter := repository.AccountFilter{Limit: int(limit)}
	if status != "" {
		filter.Status = &status
	}
	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return Result{}, err
	}
	return successList(accounts, len(accounts)), nil
}

func (s *DataAccessService) updateCustomer(ctx context.Context, params map[string]any) (Result, error) {
	id, err := ExtractInt(params, "customer_id")
	if err != nil {
		return Result{}, err
	}
	data, err := Extract[map[string]any](params, "data")
	if err != nil {
		return Result{}, err
	}

	update := domain.AccountUpdate{}
	fields := make([]domain.AccountField, 0, len(domain.UpdatableAccountFields))
	for _, field := range domain.UpdatableAccountFields {
		raw, ok := data[string(field)]
		if !ok {
			continue
		}
		value, ok := fieldValue(raw)
		if !ok {
			return failure("Invalid value for field %s: expected a string", field), nil
		}
		update[field] = value
		fields = append(fields, field)
	}
	if len(update) == 0 {
		return failure("No valid fields provided for update."), nil
	}

	account, err := s.accounts.Update(ctx, id, update, domain.FormatTimestamp(s.now()))
	if errors.Is(err, sql.ErrNoRows) {
		return failure("Account %d not found or update failed.", id), nil
	}
	if err != nil {
		return Result{}, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventCustomerUpdated,
		AccountID: account.Identifier,
		Payload:   events.CustomerUpdatedPayload{Fields: fields, Account: *account},
	})
	return success(account), nil
}

func (s *DataAccessService) createTicket(ctx context.Context, params map[string]any) (Result, error) {
	id, err := ExtractInt(params, "customer_id")
	if err != nil {
		return Result{}, err
	}
	issue, err := Extract[string](params, "issue")
	if err != nil {
		return Result{}, err
	}
	rawPriority, err := ExtractOptional(params, "priority", string(domain.TicketPriorityMedium))
	if err != nil {
		return Result{}, err
	}
	priority, ok := domain.ParseTicketPriority(rawPriority)
	if !ok {
		return failure("Priority must be 'low', 'medium', or 'high'."), nil
	}

	ticket := &domain.Ticket{
		AccountID:           id,
		Description:         issue,
		Status:              string(domain.TicketStatusOpen),
		PriorityLevel:       string(priority),
		SubmissionTimestamp: domain.FormatTimestamp(s.now()),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return Result{}, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		AccountID: id,
		Payload:   events.TicketCreatedPayload{Ticket: *ticket},
	})
	return success(ticket), nil
}

func (s *DataAccessService) getCustomerHistory(ctx context.Context, params map[string]any) (Result, error) {
	id, err := ExtractInt(params, "customer_id")
	if err != nil {
		return Result{}, err
	}
	tickets, err := s.tickets.ListByAccount(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return successList(tickets, len(tickets)), nil
}

func (s *DataAccessService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
