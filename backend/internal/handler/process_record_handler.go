package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	response "process-entry-app/backend/internal/infra/common"
	appLogger "process-entry-app/backend/internal/infra/logger"
	processsvc "process-entry-app/backend/internal/service/process"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProcessRecordHandler serves the JSON API for process records.
type ProcessRecordHandler struct {
	service *processsvc.Service
	query   *processsvc.Query
	logger  *zap.SugaredLogger
}

// NewProcessRecordHandler builds the API handler.
func NewProcessRecordHandler(service *processsvc.Service, query *processsvc.Query) *ProcessRecordHandler {
	return &ProcessRecordHandler{
		service: service,
		query:   query,
		logger:  appLogger.Component("process.handler"),
	}
}

type processRecordRequest struct {
	LotNumber int    `json:"lot_number"`
	StartDate string `json:"start_date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type publishFailureView struct {
	Topic string `json:"topic"`
	Error string `json:"error"`
}

// Create stores a record and publishes its fields.
func (h *ProcessRecordHandler) Create(c *gin.Context) {
	var req processRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, err.Error(), nil)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), processsvc.SubmitParams{
		LotNumber: req.LotNumber,
		StartDate: req.StartDate,
		StartTime: req.StartTime,
		EndDate:   req.EndDate,
		EndTime:   req.EndTime,
	})
	if err != nil {
		var verr *processsvc.ValidationError
		if errors.As(err, &verr) {
			response.Fail(c, http.StatusBadRequest, response.ErrValidation, verr.Message, gin.H{"field": verr.Field})
			return
		}
		h.logger.Errorw("create process record failed", "error", err, "lot_number", req.LotNumber)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "failed to save process record", nil)
		return
	}

	failures := make([]publishFailureView, 0, len(result.PublishFailures))
	for _, failure := range result.PublishFailures {
		failures = append(failures, publishFailureView{Topic: failure.Topic, Error: failure.Err.Error()})
	}

	response.Created(c, gin.H{
		"record":           result.Record,
		"published":        result.Published,
		"publish_failures": failures,
	}, nil)
}

// List returns the newest records.
func (h *ProcessRecordHandler) List(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "invalid limit", nil)
			return
		}
		limit = parsed
	}

	result, err := h.query.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Errorw("list process records failed", "error", err, "limit", limit)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "list process records failed", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": result.Records}, response.MetaList{
		Limit: result.Limit,
		Count: len(result.Records),
		Total: result.Total,
	})
}

// Get returns one record by id.
func (h *ProcessRecordHandler) Get(c *gin.Context) {
	id := c.Param("id")

	record, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, processsvc.ErrRecordNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound, err.Error(), nil)
			return
		}
		h.logger.Errorw("get process record failed", "error", err, "id", id)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "get process record failed", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"record": record}, nil)
}
