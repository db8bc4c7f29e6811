package tooladapter

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/customer-data-service/internal/service"
)

// Tool names exposed to agents.
const (
	ToolFetchCustomerData       = "fetch_customer_data"
	ToolSearchCustomerAccounts  = "search_customer_accounts"
	ToolModifyCustomerRecord    = "modify_customer_record"
	ToolRegisterSupportIssue    = "register_support_issue"
	ToolRetrieveCustomerHistory = "retrieve_customer_history"
)

const (
	defaultSearchLimit = 10
	defaultUrgency     = "medium"

	parsingError = "Parsing Error: The provided data for update must be a valid JSON string."
)

// Tools exposes the dispatcher operations under agent-friendly names. Every
// function returns plain text: indented JSON on success, otherwise a message
// starting with "Operation Error:" or "Service Execution Failure:".
type Tools struct {
	caller Caller
	logger *zap.Logger
}

// NewTools builds the adapter over caller.
func NewTools(caller Caller, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{caller: caller, logger: logger}
}

// FetchCustomerData retrieves customer account details by ID.
func (t *Tools) FetchCustomerData(ctx context.Context, customerID int64) string {
	return t.run(ctx, service.OpGetCustomer, map[string]any{"customer_id": customerID})
}

// SearchCustomerAccounts searches for customer accounts, optionally filtered
// by status. An empty status means no filter; a non-positive limit means 10.
func (t *Tools) SearchCustomerAccounts(ctx context.Context, accountStatus string, resultLimit int) string {
	if resultLimit <= 0 {
		resultLimit = defaultSearchLimit
	}
	params := map[string]any{"limit": resultLimit}
	if accountStatus != "" {
		params["status"] = accountStatus
	}
	return t.run(ctx, service.OpListCustomers, params)
}

// ModifyCustomerRecord updates customer record fields. updatePayload must be
// a JSON object; it is parsed before anything is sent.
func (t *Tools) ModifyCustomerRecord(ctx context.Context, customerID int64, updatePayload string) string {
	var payload map[string]any
	if err := json.Unmarshal([]byte(updatePayload), &payload); err != nil || payload == nil {
		return parsingError
	}
	return t.run(ctx, service.OpUpdateCustomer, map[string]any{"customer_id": customerID, "data": payload})
}

// RegisterSupportIssue creates a new support ticket.
func (t *Tools) RegisterSupportIssue(ctx context.Context, customerID int64, queryDescription, urgencyLevel string) string {
	if urgencyLevel == "" {
		urgencyLevel = defaultUrgency
	}
	return t.run(ctx, service.OpCreateTicket, map[string]any{
		"customer_id": customerID,
		"issue":       queryDescription,
		"priority":    urgencyLevel,
	})
}

// RetrieveCustomerHistory gets all support tickets for a customer.
func (t *Tools) RetrieveCustomerHistory(ctx context.Context, customerID int64) string {
	return t.run(ctx, service.OpGetCustomerHistory, map[string]any{"customer_id": customerID})
}

func (t *Tools) run(ctx context.Context, operation string, params map[string]any) string {
	env, err := t.caller.Call(ctx, operation, params)
	if err != nil {
		t.logger.Warn("tool call failed", zap.String("operation", operation), zap.Error(err))
		return "Service Execution Failure: " + err.Error()
	}
	if !env.Success {
		if env.Error == nil {
			return "Operation Error: Unknown service error"
		}
		return "Operation Error: " + *env.Error
	}
	return renderData(env.Data)
}

// renderData indents objects and arrays; strings come back unquoted.
func renderData(data json.RawMessage) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "null"
	}
	switch trimmed[0] {
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
			return string(trimmed)
		}
		return buf.String()
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}
