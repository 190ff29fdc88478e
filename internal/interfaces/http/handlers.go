package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sefindigital/signing-engine/internal/application/port"
	"github.com/sefindigital/signing-engine/internal/application/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	signingService  service.SigningService
	batchService    service.BatchService
	workloadService service.WorkloadService
	logger          Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	signingService service.SigningService,
	batchService service.BatchService,
	workloadService service.WorkloadService,
	logger Logger,
) *Handlers {
	return &Handlers{
		signingService:  signingService,
		batchService:    batchService,
		workloadService: workloadService,
		logger:          logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ListPendingRequest represents query parameters for the pending queue
type ListPendingRequest struct {
	ProcessID    string `form:"process_id"`
	DocumentKind string `form:"document_kind"`
	AssignedTo   string `form:"assigned_to"`
}

// SignRequest carries the acting approver and their signing credential
type SignRequest struct {
	ApproverID string `json:"approver_id" binding:"required"`
	Credential string `json:"credential" binding:"required"`
}

// RejectRequest carries the approver and the mandatory rejection reason
type RejectRequest struct {
	ApproverID string `json:"approver_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// AssignRequest names the approver to assign the task to
type AssignRequest struct {
	ApproverID string `json:"approver_id" binding:"required"`
}

// RedistributeRequest names the approver to move the task to
type RedistributeRequest struct {
	TargetApproverID string `json:"target_approver_id" binding:"required"`
}

// SignBatchRequest carries the ids for a best-effort batch signature
type SignBatchRequest struct {
	TaskIDs    []string `json:"task_ids" binding:"required"`
	ApproverID string   `json:"approver_id" binding:"required"`
	Credential string   `json:"credential" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// ListPendingTasks handles GET /api/tasks/pending
func (h *Handlers) ListPendingTasks(c *gin.Context) {
	var req ListPendingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return
	}

	tasks, err := h.signingService.ListPending(c.Request.Context(), port.TaskFilter{
		ProcessID:    req.ProcessID,
		DocumentKind: req.DocumentKind,
		AssignedTo:   req.AssignedTo,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "failed to list pending tasks"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: tasks})
}

// SignTask handles POST /api/tasks/:id/sign
func (h *Handlers) SignTask(c *gin.Context) {
	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "approver_id and credential are required"})
		return
	}

	result := h.signingService.Sign(c.Request.Context(), c.Param("id"), req.ApproverID, req.Credential)
	h.writeResult(c, result)
}

// RejectTask handles POST /api/tasks/:id/reject
func (h *Handlers) RejectTask(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "approver_id and reason are required"})
		return
	}

	result := h.signingService.Reject(c.Request.Context(), c.Param("id"), req.ApproverID, req.Reason)
	h.writeResult(c, result)
}

// AssignTask handles POST /api/tasks/:id/assign
func (h *Handlers) AssignTask(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "approver_id is required"})
		return
	}

	result := h.signingService.Assign(c.Request.Context(), c.Param("id"), req.ApproverID)
	h.writeResult(c, result)
}

// RedistributeTask handles POST /api/tasks/:id/redistribute
func (h *Handlers) RedistributeTask(c *gin.Context) {
	var req RedistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "target_approver_id is required"})
		return
	}

	result := h.workloadService.Redistribute(c.Request.Context(), c.Param("id"), req.TargetApproverID)
	h.writeResult(c, result)
}

// SignBatch handles POST /api/tasks/sign-batch
func (h *Handlers) SignBatch(c *gin.Context) {
	var req SignBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "task_ids, approver_id and credential are required"})
		return
	}

	// A batch with failures is a partial success, reported 200 with counts.
	result := h.batchService.SignMany(c.Request.Context(), req.TaskIDs, req.ApproverID, req.Credential)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// GetWorkload handles GET /api/workload
func (h *Handlers) GetWorkload(c *gin.Context) {
	workloads, err := h.workloadService.GetWorkload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: "failed to compute workload"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: workloads})
}

// writeResult maps a discriminated operation result onto an HTTP status.
func (h *Handlers) writeResult(c *gin.Context, result service.Result) {
	if result.OK {
		c.JSON(http.StatusOK, Response{Success: true, Data: result})
		return
	}

	status := http.StatusBadRequest
	switch result.ErrorKind {
	case service.ErrKindInvalidCredential:
		status = http.StatusUnauthorized
	case service.ErrKindInvalidState:
		status = http.StatusConflict
	case service.ErrKindStore:
		status = http.StatusBadGateway
	}

	c.JSON(status, Response{Success: false, Data: result, Error: result.Message})
}
