package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/customer-data-service/internal/api/dto"
	"github.com/spec-kit/customer-data-service/internal/service"
)

// Executor runs a named operation and reports the outcome as an envelope.
type Executor interface {
	Execute(ctx context.Context, name string, params map[string]any) service.Result
}

// ToolsHandler serves operation discovery and invocation.
type ToolsHandler struct {
	executor Executor
	catalog  dto.ToolsResponse
}

// NewToolsHandler constructs handler.
func NewToolsHandler(executor Executor, catalog []service.OperationDescriptor) *ToolsHandler {
	return &ToolsHandler{
		executor: executor,
		catalog:  dto.ToolsResponse{AvailableOperations: catalog},
	}
}

// ListTools GET /tools.
func (h *ToolsHandler) ListTools(c *fiber.Ctx) error {
	return c.JSON(h.catalog)
}

// Call POST /call. Logical failures still answer 200; only an unreadable
// request is rejected.
func (h *ToolsHandler) Call(c *fiber.Ctx) error {
	req, err := parseCallRequest(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(service.Result{
			Success: false,
			Error:   "Invalid request format: " + err.Error(),
		})
	}
	result := h.executor.Execute(c.UserContext(), *req.Tool, req.Params)
	return c.JSON(result)
}

func parseCallRequest(body []byte) (*dto.CallRequest, error) {
	var req dto.CallRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	if req.Tool == nil {
		return nil, errors.New("tool is required")
	}
	if req.Params == nil {
		req.Params = map[string]any{}
	}
	return &req, nil
}
