package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)

	Success(ctx, 0, gin.H{"id": "abc"}, MetaList{Limit: 10, Count: 1, Total: 3})

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var body Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if !body.Success || body.Error != nil {
		t.Fatalf("unexpected body: %+v", body)
	}
	meta, ok := body.Meta.(map[string]any)
	if !ok {
		t.Fatalf("expected meta map, got %T", body.Meta)
	}
	if meta["total"].(float64) != 3 {
		t.Fatalf("unexpected meta: %v", meta)
	}
}

func TestFailEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)

	Fail(ctx, http.StatusBadRequest, ErrValidation, "end must be after start", gin.H{"field": "process_end_time"})

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}

	var body Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Success {
		t.Fatalf("expected success=false")
	}
	if body.Error == nil || body.Error.Code != ErrValidation {
		t.Fatalf("unexpected error block: %+v", body.Error)
	}
	details, ok := body.Error.Details.(map[string]any)
	if !ok || details["field"] != "process_end_time" {
		t.Fatalf("unexpected details: %v", body.Error.Details)
	}
}
