package mcp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bfs/census-acs-mcp/internal/envelope"
	"github.com/bfs/census-acs-mcp/internal/errors"
)

// handleMessage processes an incoming MCP message and returns a response
func (s *Server) handleMessage(msg *MCPMessage) *MCPMessage {
	if msg.IsRequest() {
		return s.handleRequest(msg)
	}
	if msg.IsNotification() {
		s.handleNotification(msg)
		return nil
	}
	return NewErrorMessage(msg.Id, InvalidRequest, "Invalid message: not a request or notification", nil)
}

// handleRequest handles a JSON-RPC request
func (s *Server) handleRequest(msg *MCPMessage) *MCPMessage {
	s.logger.Debug("Handling request",
		"method", msg.Method,
		"id", msg.Id,
	)

	switch msg.Method {
	case "initialize":
		return s.handleInitializeRequest(msg)
	case "tools/list":
		return s.handleListToolsRequest(msg)
	case "tools/call":
		return s.handleCallToolRequest(msg)
	default:
		return NewErrorMessage(msg.Id, MethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method), nil)
	}
}

// handleNotification handles a JSON-RPC notification
func (s *Server) handleNotification(msg *MCPMessage) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("Client initialized")
	default:
		s.logger.Debug("Unknown notification", "method", msg.Method)
	}
}

// handleInitializeRequest handles the initialize request
func (s *Server) handleInitializeRequest(msg *MCPMessage) *MCPMessage {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		params = make(map[string]interface{})
	}

	result, err := s.handleInitialize(params)
	if err != nil {
		return NewErrorMessage(msg.Id, InternalError, err.Error(), nil)
	}
	return NewResultMessage(msg.Id, result)
}

// handleListToolsRequest handles the tools/list request
func (s *Server) handleListToolsRequest(msg *MCPMessage) *MCPMessage {
	return NewResultMessage(msg.Id, map[string]interface{}{
		"tools": s.GetToolDefinitions(),
	})
}

// handleCallToolRequest handles the tools/call request
func (s *Server) handleCallToolRequest(msg *MCPMessage) *MCPMessage {
	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		return NewErrorMessage(msg.Id, InvalidParams, "Invalid params: expected object", nil)
	}

	result, err := s.handleCallTool(params)
	if err != nil {
		return NewErrorMessage(msg.Id, callErrorCode(err), err.Error(), nil)
	}
	return NewResultMessage(msg.Id, result)
}

// callErrorCode maps a tools/call failure to its JSON-RPC error code. Bad
// call arguments (missing name, unknown tool) are the client's problem, not
// a server fault.
func callErrorCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.ValidationFailed, errors.LocationNotFound:
		return InvalidParams
	default:
		return InternalError
	}
}

// handleCallTool executes a tool. Domain failures stay inside the envelope;
// only protocol-level problems (unknown tool, bad params shape) surface as
// JSON-RPC errors.
func (s *Server) handleCallTool(params map[string]interface{}) (interface{}, error) {
	toolName, ok := params["name"].(string)
	if !ok {
		return nil, errors.NewInvalidParameterError("name", "")
	}

	toolParams, ok := params["arguments"].(map[string]interface{})
	if !ok {
		toolParams = make(map[string]interface{})
	}

	handler, exists := s.tools[toolName]
	if !exists {
		return nil, errors.NewNotFoundError("tool", toolName)
	}

	requestID := uuid.NewString()
	s.logger.Info("Calling tool",
		"tool", toolName,
		"requestId", requestID,
	)

	started := time.Now()
	resp, err := handler(toolParams)
	duration := time.Since(started)

	if err != nil {
		s.logger.Warn("Tool call failed",
			"tool", toolName,
			"requestId", requestID,
			"error", err.Error(),
		)
		resp = envelope.New().Data(nil).Error(err).Build()
	}
	resp = envelope.From(resp).WithTiming(requestID, duration).Build()

	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		return nil, errors.NewOperationError("marshal response", err)
	}

	return map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": string(jsonBytes),
			},
		},
	}, nil
}
