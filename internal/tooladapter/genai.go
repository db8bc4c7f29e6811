package tooladapter

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Declarations describes the tools for a Gemini model.
func Declarations() []*genai.FunctionDeclaration {
	customerID := &genai.Schema{Type: genai.TypeInteger, Description: "Numeric customer account identifier."}
	return []*genai.FunctionDeclaration{
		{
			Name:        ToolFetchCustomerData,
			Description: "Retrieve customer account details by ID.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"customer_id": customerID},
				Required:   []string{"customer_id"},
			},
		},
		{
			Name:        ToolSearchCustomerAccounts,
			Description: "Search for customer accounts, optionally filtered by status.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"account_status": {Type: genai.TypeString, Description: "Only return accounts with this status.", Enum: []string{"active", "disabled"}},
					"result_limit":   {Type: genai.TypeInteger, Description: "Maximum number of accounts to return (default: 10)."},
				},
			},
		},
		{
			Name:        ToolModifyCustomerRecord,
			Description: "Update customer record fields.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"customer_id":    customerID,
					"update_payload": {Type: genai.TypeString, Description: `JSON object of fields to change, e.g. {"contact_email": "new@email.com"}. Allowed fields: full_name, contact_email, contact_phone, account_status.`},
				},
				Required: []string{"customer_id", "update_payload"},
			},
		},
		{
			Name:        ToolRegisterSupportIssue,
			Description: "Create a new support ticket.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"customer_id":       customerID,
					"query_description": {Type: genai.TypeString, Description: "Description of the customer's problem."},
					"urgency_level":     {Type: genai.TypeString, Description: "Ticket priority (default: medium).", Enum: []string{"low", "medium", "high"}},
				},
				Required: []string{"customer_id", "query_description"},
			},
		},
		{
			Name:        ToolRetrieveCustomerHistory,
			Description: "Get all support tickets for a customer.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"customer_id": customerID},
				Required:   []string{"customer_id"},
			},
		},
	}
}

// Invoke runs the tool a model asked for. The adapter text is returned under
// "output"; argument problems are returned under "error".
func (t *Tools) Invoke(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	var output string
	switch call.Name {
	case ToolFetchCustomerData:
		id, errResp := param[int64](call, "customer_id")
		if errResp != nil {
			return errResp
		}
		output = t.FetchCustomerData(ctx, id)
	case ToolSearchCustomerAccounts:
		status, errResp := optionalParam(call, "account_status", "")
		if errResp != nil {
			return errResp
		}
		limit, errResp := optionalParam[int64](call, "result_limit", defaultSearchLimit)
		if errResp != nil {
			return errResp
		}
		output = t.SearchCustomerAccounts(ctx, status, int(limit))
	case ToolModifyCustomerRecord:
		id, errResp := param[int64](call, "customer_id")
		if errResp != nil {
			return errResp
		}
		payload, errResp := param[string](call, "update_payload")
		if errResp != nil {
			return errResp
		}
		output = t.ModifyCustomerRecord(ctx, id, payload)
	case ToolRegisterSupportIssue:
		id, errResp := param[int64](call, "customer_id")
		if errResp != nil {
			return errResp
		}
		description, errResp := param[string](call, "query_description")
		if errResp != nil {
			return errResp
		}
		urgency, errResp := optionalParam(call, "urgency_level", defaultUrgency)
		if errResp != nil {
			return errResp
		}
		output = t.RegisterSupportIssue(ctx, id, description, urgency)
	case ToolRetrieveCustomerHistory:
		id, errResp := param[int64](call, "customer_id")
		if errResp != nil {
			return errResp
		}
		output = t.RetrieveCustomerHistory(ctx, id)
	default:
		return errorResponse(call, "unknown tool %q", call.Name)
	}
	return &genai.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: map[string]any{"output": output},
	}
}

// param extracts a required argument. Models send numbers as float64.
func param[T any](call *genai.FunctionCall, name string) (T, *genai.FunctionResponse) {
	var zero T
	value, exists := call.Args[name]
	if !exists {
		return zero, errorResponse(call, "%s parameter is required", name)
	}
	if v, ok := convert[T](value); ok {
		return v, nil
	}
	return zero, errorResponse(call, "%s parameter must be of type %T, got %T", name, zero, value)
}

func optionalParam[T any](call *genai.FunctionCall, name string, defaultValue T) (T, *genai.FunctionResponse) {
	value, exists := call.Args[name]
	if !exists || value == nil {
		return defaultValue, nil
	}
	if v, ok := convert[T](value); ok {
		return v, nil
	}
	var zero T
	return zero, errorResponse(call, "%s parameter must be of type %T, got %T", name, zero, value)
}

func convert[T any](value any) (T, bool) {
	if v, ok := value.(T); ok {
		return v, true
	}
	var zero T
	if _, wantInt := any(zero).(int64); wantInt {
		switch n := value.(type) {
		case float64:
			if n == float64(int64(n)) {
				return any(int64(n)).(T), true
			}
		case int:
			return any(int64(n)).(T), true
		}
	}
	return zero, false
}

func errorResponse(call *genai.FunctionCall, format string, args ...any) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   call.ID,
		Name: call.Name,
		Response: map[string]any{
			"error": fmt.Sprintf(format, args...),
		},
	}
}
