package dto

import "github.com/spec-kit/customer-data-service/internal/service"

// CallRequest payload for POST /call.
type CallRequest struct {
	Tool   *string        `json:"tool"`
	Params map[string]any `json:"params"`
}

// ToolsResponse lists the operations served by POST /call.
type ToolsResponse struct {
	AvailableOperations []service.OperationDescriptor `json:"available_operations"`
}
