package tooladapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/spec-kit/customer-data-service/internal/service"
)

func TestDeclarationsCoverTools(t *testing.T) {
	decls := Declarations()
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
		require.NotNil(t, d.Parameters, d.Name)
		for _, required := range d.Parameters.Required {
			assert.Contains(t, d.Parameters.Properties, required, d.Name)
		}
	}
	assert.Equal(t, []string{
		ToolFetchCustomerData,
		ToolSearchCustomerAccounts,
		ToolModifyCustomerRecord,
		ToolRegisterSupportIssue,
		ToolRetrieveCustomerHistory,
	}, names)
}

func TestInvokeRoutesModelCalls(t *testing.T) {
	caller := &fakeCaller{env: &Envelope{Success: true, Data: json.RawMessage(`{"ticket_id":8}`)}}
	tools := NewTools(caller, nil)

	resp := tools.Invoke(context.Background(), &genai.FunctionCall{
		ID:   "call-1",
		Name: ToolRegisterSupportIssue,
		Args: map[string]any{"customer_id": float64(4), "query_description": "Outage"},
	})
	require.NotNil(t, resp)
	assert.Equal(t, "call-1", resp.ID)
	assert.Equal(t, ToolRegisterSupportIssue, resp.Name)
	assert.Equal(t, "{\n  \"ticket_id\": 8\n}", resp.Response["output"])
	assert.Equal(t, service.OpCreateTicket, caller.tool)
	assert.Equal(t, map[string]any{"customer_id": int64(4), "issue": "Outage", "priority": "medium"}, caller.params)

	resp = tools.Invoke(context.Background(), &genai.FunctionCall{
		Name: ToolSearchCustomerAccounts,
		Args: map[string]any{"result_limit": float64(2)},
	})
	assert.Contains(t, resp.Response, "output")
	assert.Equal(t, map[string]any{"limit": 2}, caller.params)
}

func TestInvokeArgumentErrors(t *testing.T) {
	caller := &fakeCaller{}
	tools := NewTools(caller, nil)

	tests := []struct {
		name string
		call *genai.FunctionCall
		want string
	}{
		{"unknown", &genai.FunctionCall{Name: "drop_tables"}, `unknown tool "drop_tables"`},
		{"missing", &genai.FunctionCall{Name: ToolFetchCustomerData, Args: map[string]any{}}, "customer_id parameter is required"},
		{"fractional", &genai.FunctionCall{Name: ToolRetrieveCustomerHistory, Args: map[string]any{"customer_id": 1.5}}, "customer_id parameter must be of type int64, got float64"},
		{"wrong type", &genai.FunctionCall{Name: ToolModifyCustomerRecord, Args: map[string]any{"customer_id": float64(1), "update_payload": map[string]any{}}}, "update_payload parameter must be of type string, got map[string]interface {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tools.Invoke(context.Background(), tt.call)
			assert.Equal(t, tt.want, resp.Response["error"])
		})
	}
	assert.Zero(t, caller.calls)
}
