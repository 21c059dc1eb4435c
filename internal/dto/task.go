package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/service"
)

// DueDate parses dueDate from JSON as either date-only ("2006-01-02") or RFC3339.
// Date-only is stored as start of that day in UTC. An explicit null is kept
// apart from an absent field, so a PATCH can clear the date.
type DueDate struct {
	t   *time.Time
	set bool
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	d.set = true
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02", // date only
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			if layout == "2006-01-02" {
				parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			d.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("dueDate: use date (YYYY-MM-DD) or RFC3339 datetime")
}

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

// Provided reports whether the field appeared in the request body at all,
// including as null.
func (d DueDate) Provided() bool { return d.set }

type CreateTaskRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=200"`
	Description string   `json:"description" binding:"max=2000"`
	Status      string   `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority    string   `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     DueDate  `json:"dueDate"` // optional: "2026-02-19" or RFC3339
	Tags        []string `json:"tags" binding:"omitempty,dive,min=1,max=50"`
}

// Input converts the request into the service input.
func (r CreateTaskRequest) Input() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      dom.Status(r.Status),
		Priority:    dom.Priority(r.Priority),
		DueDate:     r.DueDate.Ptr(),
		Tags:        r.Tags,
	}
}

type UpdateTaskRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Status      *string  `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority    *string  `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     DueDate  `json:"dueDate"` // absent = keep, null = clear, value = set
	Tags        []string `json:"tags" binding:"omitempty,dive,min=1,max=50"`
}

// Input converts the patch into the service input; nil fields stay untouched.
func (r UpdateTaskRequest) Input() service.UpdateTaskInput {
	in := service.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
	}
	if r.Status != nil {
		s := dom.Status(*r.Status)
		in.Status = &s
	}
	if r.Priority != nil {
		p := dom.Priority(*r.Priority)
		in.Priority = &p
	}
	if r.DueDate.Provided() {
		in.DueDate = r.DueDate.Ptr()
		in.DueDateSet = true
	}
	return in
}

// ShareTaskRequest is the JSON body for POST /tasks/:id/share.
type ShareTaskRequest struct {
	UserID     string `json:"userId" binding:"required"`
	Permission string `json:"permission" binding:"omitempty,oneof=view edit admin"`
}

// ListTasksQuery binds GET /tasks query parameters.
type ListTasksQuery struct {
	Page      int      `form:"page" binding:"omitempty,min=1"`
	Limit     int      `form:"limit" binding:"omitempty,min=1"`
	Status    string   `form:"status" binding:"omitempty,oneof=todo in_progress done"`
	Priority  string   `form:"priority" binding:"omitempty,oneof=low medium high"`
	SortBy    string   `form:"sortBy" binding:"omitempty,oneof=createdAt updatedAt dueDate title status priority"`
	SortOrder string   `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Search    string   `form:"search"`
	Tags      []string `form:"tags"`
}

// ShareResponse is one entry of a task's share list.
type ShareResponse struct {
	UserID     string `json:"userId"`
	Permission string `json:"permission"`
}

type TaskResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	DueDate     *time.Time      `json:"dueDate"`
	Tags        []string        `json:"tags"`
	Owner       string          `json:"owner"`
	SharedWith  []ShareResponse `json:"sharedWith"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewTaskResponse maps a domain task.
func NewTaskResponse(t dom.Task) TaskResponse {
	shares := make([]ShareResponse, 0, len(t.Shares))
	for _, s := range t.Shares {
		shares = append(shares, ShareResponse{UserID: s.UserID, Permission: string(s.Permission)})
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Tags:        tags,
		Owner:       t.OwnerID,
		SharedWith:  shares,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TaskListResponse is the data payload of GET /tasks.
type TaskListResponse struct {
	Tasks      []TaskResponse     `json:"tasks"`
	Pagination service.Pagination `json:"pagination"`
}
