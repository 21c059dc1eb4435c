package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/apperr"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// The id format is checked before any service call, so the handler can run
// against a nil service here.
func TestInvalidTaskIDRejectedEarly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewTaskHandler(nil, testLog(), false)
	r := gin.New()
	r.GET("/tasks/:id", h.GetByID)
	r.DELETE("/tasks/:id", h.Delete)

	for _, bad := range []string{"123", "not-an-id", "0123456789abcdef0123456g", "0123456789abcdef012345678"} {
		for _, method := range []string{http.MethodGet, http.MethodDelete} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(method, "/tasks/"+bad, nil)
			r.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("%s /tasks/%s = %d, want 400", method, bad, w.Code)
			}
			var env Envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("bad envelope: %v", err)
			}
			if env.Success || env.Message != "Invalid ID format" {
				t.Errorf("envelope = %+v", env)
			}
		}
	}
}

func TestRespondErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		showDetail bool
		wantCode   int
		wantMsg    string
		wantDetail bool
	}{
		{name: "not found", err: apperr.NotFound("Task not found"), wantCode: 404, wantMsg: "Task not found"},
		{name: "forbidden", err: apperr.Forbidden("You do not have access to this task"), wantCode: 403, wantMsg: "You do not have access to this task"},
		{name: "locked", err: apperr.Locked("Account is locked"), wantCode: 423, wantMsg: "Account is locked"},
		{name: "internal hidden", err: io.ErrUnexpectedEOF, wantCode: 500, wantMsg: "Internal server error"},
		{name: "internal shown", err: io.ErrUnexpectedEOF, showDetail: true, wantCode: 500, wantMsg: "Internal server error", wantDetail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, testLog(), tt.showDetail, tt.err)

			if w.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", w.Code, tt.wantCode)
			}
			var env Envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("bad envelope: %v", err)
			}
			if env.Success {
				t.Error("success = true on error response")
			}
			if env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
			if tt.wantDetail && env.Errors == nil {
				t.Error("expected error detail in non-production mode")
			}
			if !tt.showDetail && tt.wantCode == 500 && env.Errors != nil {
				t.Errorf("error detail leaked: %v", env.Errors)
			}
		})
	}
}
