package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	appLogger "process-entry-app/backend/internal/infra/logger"
	processsvc "process-entry-app/backend/internal/service/process"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProcessFormTemplate is the template name the form handler renders.
const ProcessFormTemplate = "process_form.html"

const (
	formDateLayout = "2006-01-02"
	formTimeLayout = "15:04:05"
)

// ProcessFormHandler serves the HTML entry form.
type ProcessFormHandler struct {
	service *processsvc.Service
	logger  *zap.SugaredLogger
}

// NewProcessFormHandler builds the form handler.
func NewProcessFormHandler(service *processsvc.Service) *ProcessFormHandler {
	return &ProcessFormHandler{service: service, logger: appLogger.Component("process.form")}
}

type processFormValues struct {
	LotNumber string
	StartDate string
	StartTime string
	EndDate   string
	EndTime   string
}

type processFormSuccess struct {
	ID           string
	Seconds      int64
	DurationText string
}

type processFormView struct {
	Values       processFormValues
	Zone         string
	Error        string
	ErrorField   string
	Success      *processFormSuccess
	FailedTopics []string
}

// Show renders an empty form with dates set to today and times set to now.
func (h *ProcessFormHandler) Show(c *gin.Context) {
	now := h.service.Now()
	today := now.Format(formDateLayout)
	clock := now.Format(formTimeLayout)

	h.render(c, http.StatusOK, processFormView{
		Values: processFormValues{
			StartDate: today,
			StartTime: clock,
			EndDate:   today,
			EndTime:   clock,
		},
	})
}

// Submit handles a posted form and re-renders it with the outcome. Submitted
// values are kept in every case.
func (h *ProcessFormHandler) Submit(c *gin.Context) {
	values := postedValues(c)
	view := processFormView{Values: values}

	lot, err := strconv.Atoi(values.LotNumber)
	if err != nil {
		view.Error = "lot number must be a whole number"
		view.ErrorField = "lot_number"
		h.render(c, http.StatusBadRequest, view)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), processsvc.SubmitParams{
		LotNumber: lot,
		StartDate: values.StartDate,
		StartTime: values.StartTime,
		EndDate:   values.EndDate,
		EndTime:   values.EndTime,
	})
	if err != nil {
		var verr *processsvc.ValidationError
		if errors.As(err, &verr) {
			view.Error = verr.Message
			view.ErrorField = verr.Field
			h.render(c, http.StatusBadRequest, view)
			return
		}
		h.logger.Errorw("submit process form failed", "error", err, "lot_number", lot)
		view.Error = "failed to save process record"
		h.render(c, http.StatusInternalServerError, view)
		return
	}

	view.Success = &processFormSuccess{
		ID:           result.Record.ID,
		Seconds:      result.Record.ProcessDuration,
		DurationText: result.Record.Duration().String(),
	}
	for _, failure := range result.PublishFailures {
		view.FailedTopics = append(view.FailedTopics, failure.Topic)
	}
	h.render(c, http.StatusOK, view)
}

// Throttled re-renders the posted form with a rate limit error.
func (h *ProcessFormHandler) Throttled(c *gin.Context, retryAfter time.Duration) {
	msg := "too many submissions, try again shortly"
	if secs := int(retryAfter.Seconds() + 0.5); secs > 0 {
		msg = fmt.Sprintf("too many submissions, try again in %d seconds", secs)
	}
	h.render(c, http.StatusTooManyRequests, processFormView{
		Values: postedValues(c),
		Error:  msg,
	})
}

func postedValues(c *gin.Context) processFormValues {
	return processFormValues{
		LotNumber: strings.TrimSpace(c.PostForm("lot_number")),
		StartDate: strings.TrimSpace(c.PostForm("start_date")),
		StartTime: strings.TrimSpace(c.PostForm("start_time")),
		EndDate:   strings.TrimSpace(c.PostForm("end_date")),
		EndTime:   strings.TrimSpace(c.PostForm("end_time")),
	}
}

func (h *ProcessFormHandler) render(c *gin.Context, status int, view processFormView) {
	view.Zone = zoneLabel(h.service.Location())
	c.HTML(status, ProcessFormTemplate, view)
}

func zoneLabel(loc *time.Location) string {
	if loc == nil || loc == time.Local {
		return "the server's local time zone"
	}
	return loc.String()
}
