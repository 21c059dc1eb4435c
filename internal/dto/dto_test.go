package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
)

func TestDueDateUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string // RFC3339, empty means nil
		err  bool
	}{
		{name: "date only", json: `"2026-02-19"`, want: "2026-02-19T00:00:00Z"},
		{name: "rfc3339", json: `"2026-02-19T15:30:00Z"`, want: "2026-02-19T15:30:00Z"},
		{name: "rfc3339 offset", json: `"2026-02-19T15:30:00+05:00"`, want: "2026-02-19T15:30:00+05:00"},
		{name: "null", json: `null`, want: ""},
		{name: "empty string", json: `""`, want: ""},
		{name: "garbage", json: `"next tuesday"`, err: true},
		{name: "not a string", json: `42`, err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DueDate
			err := json.Unmarshal([]byte(tt.json), &d)
			if tt.err {
				if err == nil {
					t.Fatalf("expected error, got %v", d.Ptr())
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if tt.want == "" {
				if d.Ptr() != nil {
					t.Fatalf("expected nil, got %v", d.Ptr())
				}
				return
			}
			want, _ := time.Parse(time.RFC3339, tt.want)
			if d.Ptr() == nil || !d.Ptr().Equal(want) {
				t.Fatalf("parsed %v, want %v", d.Ptr(), want)
			}
		})
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		confirm    string
		wantFields []string
	}{
		{name: "valid", password: "Secret123", confirm: "Secret123"},
		{name: "no digit", password: "onlyletters", confirm: "onlyletters", wantFields: []string{"password"}},
		{name: "no letter", password: "12345678", confirm: "12345678", wantFields: []string{"password"}},
		{name: "mismatch", password: "Secret123", confirm: "Secret124", wantFields: []string{"confirmPassword"}},
		{name: "both wrong", password: "letters", confirm: "other", wantFields: []string{"password", "confirmPassword"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RegisterRequest{
				Email:           "a@example.com",
				Name:            "A",
				Password:        tt.password,
				ConfirmPassword: tt.confirm,
			}
			errs := r.Validate()
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got %d field errors (%v), want %d", len(errs), errs, len(tt.wantFields))
			}
			for i, f := range tt.wantFields {
				if errs[i].Field != f {
					t.Errorf("error %d on field %q, want %q", i, errs[i].Field, f)
				}
			}
		})
	}
}

func TestNewUserResponseOmitsPasswordHash(t *testing.T) {
	u := dom.User{
		ID:           "0123456789abcdef01234567",
		Email:        "a@example.com",
		Name:         "A",
		PasswordHash: "$2a$10$secret",
		Role:         dom.RoleUser,
		IsActive:     true,
	}
	out, err := json.Marshal(NewUserResponse(u))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if str := string(out); str == "" || strings.Contains(str, "secret") || strings.Contains(str, "password") {
		t.Fatalf("response leaks credentials: %s", str)
	}
}

func TestNewTaskResponseNeverNilSlices(t *testing.T) {
	resp := NewTaskResponse(dom.Task{ID: "0123456789abcdef01234567"})
	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), `"tags":null`) || strings.Contains(string(out), `"sharedWith":null`) {
		t.Fatalf("nil slice serialized as null: %s", out)
	}
}

func TestUpdateTaskRequestInput(t *testing.T) {
	status := "done"
	var r UpdateTaskRequest
	r.Status = &status

	in := r.Input()
	if in.Status == nil || *in.Status != dom.StatusDone {
		t.Errorf("status = %v", in.Status)
	}
	if in.Title != nil || in.Description != nil || in.Priority != nil || in.Tags != nil {
		t.Error("unset fields must stay nil")
	}
	if in.DueDateSet {
		t.Error("absent dueDate must not be marked as provided")
	}
}

func TestUpdateTaskRequestDueDateNullVsAbsent(t *testing.T) {
	var absent UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"title":"Renamed"}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.DueDate.Provided() {
		t.Error("absent dueDate reported as provided")
	}

	var cleared UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"dueDate":null}`), &cleared); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !cleared.DueDate.Provided() {
		t.Fatal("explicit null dueDate not reported as provided")
	}
	if cleared.DueDate.Ptr() != nil {
		t.Errorf("null dueDate parsed to %v", cleared.DueDate.Ptr())
	}
	in := cleared.Input()
	if !in.DueDateSet || in.DueDate != nil {
		t.Errorf("input = set %v, date %v; want a clear", in.DueDateSet, in.DueDate)
	}

	var set UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"dueDate":"2026-09-01"}`), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !set.DueDate.Provided() || set.DueDate.Ptr() == nil {
		t.Error("date value not carried through")
	}
}
