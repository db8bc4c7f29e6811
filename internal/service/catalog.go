package service

import "github.com/invopop/jsonschema"

// OperationDescriptor documents one operation for discovery by callers.
type OperationDescriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  map[string]string  `json:"parameters"`
	InputSchema *jsonschema.Schema `json:"input_schema,omitempty"`
}

// GetCustomerParams documents get_customer input.
type GetCustomerParams struct {
	CustomerID int64 `json:"customer_id" jsonschema:"required,description=Account identifier"`
}

// ListCustomersParams documents list_customers input.
type ListCustomersParams struct {
	Status string `json:"status,omitempty" jsonschema:"description=Only return accounts with this status,example=active"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Maximum number of accounts to return,default=100,minimum=1"`
}

// UpdateCustomerParams documents update_customer input.
type UpdateCustomerParams struct {
	CustomerID int64                `json:"customer_id" jsonschema:"required,description=Account identifier"`
	Data       UpdateCustomerFields `json:"data" jsonschema:"required,description=Fields to change; unknown keys are ignored"`
}

// UpdateCustomerFields lists the fields update_customer applies.
type UpdateCustomerFields struct {
	FullName      string `json:"full_name,omitempty"`
	ContactEmail  string `json:"contact_email,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
	AccountStatus string `json:"account_status,omitempty" jsonschema:"example=active,example=disabled"`
}

// CreateTicketParams documents create_ticket input.
type CreateTicketParams struct {
	CustomerID int64  `json:"customer_id" jsonschema:"required,description=Account the ticket belongs to"`
	Issue      string `json:"issue" jsonschema:"required,description=Description of the problem"`
	Priority   string `json:"priority,omitempty" jsonschema:"enum=low,enum=medium,enum=high,default=medium"`
}

// GetCustomerHistoryParams documents get_customer_history input.
type GetCustomerHistoryParams struct {
	CustomerID int64 `json:"customer_id" jsonschema:"required,description=Account identifier"`
}

var schemaReflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  true,
	DoNotReference:             true,
}

// Catalog returns the static operation list served by GET /tools.
func Catalog() []OperationDescriptor {
	return []OperationDescriptor{
		{
			Name:        OpGetCustomer,
			Description: "Retrieve customer account by ID.",
			Parameters:  map[string]string{"customer_id": "integer"},
			InputSchema: schemaReflector.Reflect(&GetCustomerParams{}),
		},
		{
			Name:        OpListCustomers,
			Description: "Search accounts, optionally filtered by status.",
			Parameters:  map[string]string{"status": "string (optional)", "limit": "integer (optional)"},
			InputSchema: schemaReflector.Reflect(&ListCustomersParams{}),
		},
		{
			Name:        OpUpdateCustomer,
			Description: "Modify customer record details.",
			Parameters:  map[string]string{"customer_id": "integer", "data": "JSON object of fields to update"},
			InputSchema: schemaReflector.Reflect(&UpdateCustomerParams{}),
		},
		{
			Name:        OpCreateTicket,
			Description: "Log a new support ticket.",
			Parameters:  map[string]string{"customer_id": "integer", "issue": "string", "priority": "string (low/medium/high)"},
			InputSchema: schemaReflector.Reflect(&CreateTicketParams{}),
		},
		{
			Name:        OpGetCustomerHistory,
			Description: "Get all historical tickets for an account.",
			Parameters:  map[string]string{"customer_id": "integer"},
			InputSchema: schemaReflector.Reflect(&GetCustomerHistoryParams{}),
		},
	}
}
