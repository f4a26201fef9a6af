package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"longcatnode/internal/core"
	"longcatnode/internal/process"
	"longcatnode/internal/util"
	"longcatnode/internal/validate"

	"github.com/gin-gonic/gin"
)

// ExecuteRequest is the body of POST /v1/execute. Parameters holds one entry
// per item, or a single entry applied to every item.
type ExecuteRequest struct {
	Items          []core.Item           `json:"items"`
	Parameters     []core.NodeParameters `json:"parameters"`
	ContinueOnFail bool                  `json:"continueOnFail"`
}

// ExecuteResponse is the body returned by POST /v1/execute.
type ExecuteResponse struct {
	ExecutionID string            `json:"executionId"`
	Items       []core.OutputItem `json:"items"`
}

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Messages []core.ChatMessage `json:"messages"`
	Options  core.ChatOptions   `json:"options"`
}

func (s *Server) listModels(c *gin.Context) {
	c.JSON(http.StatusOK, s.modelsData)
}

func (s *Server) executeNode(c *gin.Context) {
	executionID := util.NewExecutionID()
	c.Header(core.HeaderExecutionID, executionID)

	var request ExecuteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(request.Items) > 0 && len(request.Parameters) == 0 {
		respondWithError(c, http.StatusBadRequest, "parameters are required")
		return
	}
	for i, item := range request.Items {
		if err := validate.ValidateBinary(item.Binary); err != nil {
			respondWithError(c, http.StatusBadRequest, fmt.Sprintf("item %d: %v", i, err))
			return
		}
	}

	s.config.Logger.Debug("Execution %s: %d items, continueOnFail=%v", executionID, len(request.Items), request.ContinueOnFail)

	outputs, err := s.executor.Execute(c.Request.Context(), process.ExecuteInput{
		Items:          request.Items,
		Parameters:     request.Parameters,
		ContinueOnFail: request.ContinueOnFail,
	})
	if err != nil {
		s.config.Logger.Error("Execution %s failed: %v", executionID, err)
		c.JSON(statusForError(err), gin.H{
			"error":       err.Error(),
			"errorType":   core.ErrorTypeName(err),
			"executionId": executionID,
		})
		return
	}

	c.JSON(http.StatusOK, ExecuteResponse{ExecutionID: executionID, Items: outputs})
}

func (s *Server) chat(c *gin.Context) {
	startTime := time.Now()

	var request ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(request.Messages) == 0 {
		respondWithError(c, http.StatusBadRequest, "messages are required")
		return
	}
	if !s.provider.ValidateConfig() {
		respondWithError(c, http.StatusServiceUnavailable, "LongCat API key is not configured")
		return
	}

	model := request.Options.Model
	if model == "" {
		model = core.DefaultModel
	}

	result, err := s.provider.Chat(c.Request.Context(), request.Messages, request.Options)
	s.metricsService.RecordRequest(err == nil, time.Since(startTime), model, core.StatsModeChat)
	if err != nil {
		s.config.Logger.Error("Chat request failed: %v", err)
		respondWithError(c, statusForError(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// statusForError maps an aborted execution to an HTTP status.
func statusForError(err error) int {
	var schemaErr *core.MalformedToolSchemaError
	if errors.As(err, &schemaErr) {
		return http.StatusBadRequest
	}
	var transportErr *core.TransportError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
