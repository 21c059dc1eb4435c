package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/access"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/apperr"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/cache"
	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/repo"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CreateTaskInput carries the fields a task is created from.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      dom.Status
	Priority    dom.Priority
	DueDate     *time.Time
	Tags        []string
}

// UpdateTaskInput merges only the provided fields into an existing task.
// DueDateSet distinguishes "leave the date alone" from "clear it": a nil
// DueDate with DueDateSet true removes the due date.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *dom.Status
	Priority    *dom.Priority
	DueDate     *time.Time
	DueDateSet  bool
	Tags        []string
}

// Pagination reports the listing position; Pages is ceil(Total/Limit).
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ListCache caches task listing pages per user; *cache.TaskCache implements it.
type ListCache interface {
	GetList(ctx context.Context, userID, fingerprint string) (*cache.CachedList, error)
	SetList(ctx context.Context, userID, fingerprint string, list cache.CachedList) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// TaskService owns the permission-gated task lifecycle and its audit trail.
type TaskService struct {
	tasks repo.TaskRepo
	users repo.UserRepo
	audit repo.AuditRepo
	cache ListCache
	sf    singleflight.Group
	log   *logrus.Entry

	auditLimit int
	retention  time.Duration
	now        func() time.Time
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(tasks repo.TaskRepo, users repo.UserRepo, audit repo.AuditRepo,
	c ListCache, log *logrus.Entry, auditLimit int, retention time.Duration) *TaskService {
	return &TaskService{
		tasks:      tasks,
		users:      users,
		audit:      audit,
		cache:      c,
		log:        log,
		auditLimit: auditLimit,
		retention:  retention,
		now:        time.Now,
	}
}

// Create stores a new task owned by userID and audits it.
func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (dom.Task, error) {
	if in.Status == "" {
		in.Status = dom.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = dom.PriorityMedium
	}
	t, err := s.tasks.Create(ctx, dom.Task{
		ID:          dom.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Tags:        normalizeTags(in.Tags),
		OwnerID:     userID,
	})
	if err != nil {
		return dom.Task{}, err
	}

	if err := s.audit.Append(ctx, dom.AuditEntry{
		ID:         dom.NewID(),
		Action:     dom.ActionCreate,
		EntityType: dom.EntityTask,
		EntityID:   t.ID,
		UserID:     userID,
		Changes: map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"status":      t.Status,
			"priority":    t.Priority,
			"dueDate":     t.DueDate,
			"tags":        t.Tags,
		},
	}); err != nil {
		return dom.Task{}, err
	}

	s.invalidateCache(ctx, t)
	s.log.WithFields(logrus.Fields{"task_id": t.ID, "user_id": userID}).Info("task created")
	return t, nil
}

// Get returns the task if userID may read it. A missing (or soft-deleted)
// task is 404 before any permission check; no access is 403.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (dom.Task, error) {
	t, err := s.load(ctx, taskID)
	if err != nil {
		return dom.Task{}, err
	}
	if !access.CanRead(t, userID) {
		return dom.Task{}, apperr.Forbidden("You do not have access to this task")
	}
	return t, nil
}

// List returns the page of tasks userID owns or is shared on.
func (s *TaskService) List(ctx context.Context, userID string, f repo.TaskFilter) ([]dom.Task, Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)

	var (
		tasks []dom.Task
		total int
	)
	if s.cache != nil {
		fp := filterFingerprint(f)
		v, err, _ := s.sf.Do(userID+":"+fp, func() (interface{}, error) {
			if hit, err := s.cache.GetList(ctx, userID, fp); err == nil && hit != nil {
				return *hit, nil
			}
			list, n, err := s.tasks.List(ctx, userID, f)
			if err != nil {
				return nil, err
			}
			out := cache.CachedList{Tasks: list, Total: n}
			_ = s.cache.SetList(ctx, userID, fp, out)
			return out, nil
		})
		if err != nil {
			return nil, Pagination{}, err
		}
		cached := v.(cache.CachedList)
		tasks, total = cached.Tasks, cached.Total
	} else {
		var err error
		tasks, total, err = s.tasks.List(ctx, userID, f)
		if err != nil {
			return nil, Pagination{}, err
		}
	}

	return tasks, Pagination{
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
		Pages: (total + f.Limit - 1) / f.Limit,
	}, nil
}

// Update merges the provided fields into the task, recording a per-field
// old/new diff in the audit trail. Owner and shared edit/admin users may update.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, in UpdateTaskInput) (dom.Task, error) {
	t, err := s.load(ctx, taskID)
	if err != nil {
		return dom.Task{}, err
	}
	if !access.CanEdit(t, userID) {
		return dom.Task{}, apperr.Forbidden("You do not have permission to edit this task")
	}

	patch := t
	changes := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title != t.Title {
			changes["title"] = dom.FieldChange{Old: t.Title, New: title}
		}
		patch.Title = title
	}
	if in.Description != nil && *in.Description != t.Description {
		changes["description"] = dom.FieldChange{Old: t.Description, New: *in.Description}
		patch.Description = *in.Description
	}
	if in.Status != nil && *in.Status != t.Status {
		changes["status"] = dom.FieldChange{Old: t.Status, New: *in.Status}
		patch.Status = *in.Status
	}
	if in.Priority != nil && *in.Priority != t.Priority {
		changes["priority"] = dom.FieldChange{Old: t.Priority, New: *in.Priority}
		patch.Priority = *in.Priority
	}
	if in.DueDateSet && !equalTimePtr(in.DueDate, t.DueDate) {
		changes["dueDate"] = dom.FieldChange{Old: t.DueDate, New: in.DueDate}
		patch.DueDate = in.DueDate
	}
	if in.Tags != nil {
		tags := normalizeTags(in.Tags)
		if !slices.Equal(tags, t.Tags) {
			changes["tags"] = dom.FieldChange{Old: t.Tags, New: tags}
		}
		patch.Tags = tags
	}

	updated, err := s.tasks.Update(ctx, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, apperr.NotFound("Task not found")
		}
		return dom.Task{}, err
	}

	if err := s.audit.Append(ctx, dom.AuditEntry{
		ID:         dom.NewID(),
		Action:     dom.ActionUpdate,
		EntityType: dom.EntityTask,
		EntityID:   updated.ID,
		UserID:     userID,
		Changes:    changes,
	}); err != nil {
		return dom.Task{}, err
	}

	s.invalidateCache(ctx, updated)
	s.log.WithFields(logrus.Fields{"task_id": taskID, "user_id": userID}).Info("task updated")
	return updated, nil
}

// Delete soft-deletes the task. Owner only; the row stays in storage with
// its delete flag set.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	t, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}
	if !access.IsOwner(t, userID) {
		return apperr.Forbidden("You do not have permission to delete this task")
	}
	if err := s.tasks.SoftDelete(ctx, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("Task not found")
		}
		return err
	}
	if err := s.audit.Append(ctx, dom.AuditEntry{
		ID:         dom.NewID(),
		Action:     dom.ActionDelete,
		EntityType: dom.EntityTask,
		EntityID:   taskID,
		UserID:     userID,
	}); err != nil {
		return err
	}
	s.invalidateCache(ctx, t)
	s.log.WithFields(logrus.Fields{"task_id": taskID, "user_id": userID}).Info("task deleted")
	return nil
}

// Share grants shareUserID the given permission, replacing any existing
// entry for that user. Owner only; the target user must exist.
func (s *TaskService) Share(ctx context.Context, userID, taskID, shareUserID string, p dom.Permission) (dom.Task, error) {
	t, err := s.load(ctx, taskID)
	if err != nil {
		return dom.Task{}, err
	}
	if !access.IsOwner(t, userID) {
		return dom.Task{}, apperr.Forbidden("You do not have permission to share this task")
	}
	if _, err := s.users.GetByID(ctx, shareUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, apperr.NotFound("User not found")
		}
		return dom.Task{}, err
	}
	if err := s.tasks.UpsertShare(ctx, taskID, shareUserID, p); err != nil {
		return dom.Task{}, err
	}
	out, err := s.load(ctx, taskID)
	if err != nil {
		return dom.Task{}, err
	}
	// Invalidate with the post-upsert share list: a first-time grantee is
	// not in the copy loaded above, and their cached listings must go too.
	s.invalidateCache(ctx, out)
	s.log.WithFields(logrus.Fields{
		"task_id": taskID, "user_id": userID, "shared_with": shareUserID, "permission": p,
	}).Info("task shared")
	return out, nil
}

// Unshare removes shareUserID's entry. Absence is not an error.
func (s *TaskService) Unshare(ctx context.Context, userID, taskID, shareUserID string) (dom.Task, error) {
	t, err := s.load(ctx, taskID)
	if err != nil {
		return dom.Task{}, err
	}
	if !access.IsOwner(t, userID) {
		return dom.Task{}, apperr.Forbidden("You do not have permission to modify sharing on this task")
	}
	if err := s.tasks.RemoveShare(ctx, taskID, shareUserID); err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, t)
	s.log.WithFields(logrus.Fields{
		"task_id": taskID, "user_id": userID, "unshared_with": shareUserID,
	}).Info("task unshared")
	return s.load(ctx, taskID)
}

// AuditLog returns the task's audit entries newest-first, capped at limit,
// after re-checking read access. Entries past the retention window are
// never returned.
func (s *TaskService) AuditLog(ctx context.Context, userID, taskID string, limit int) ([]dom.AuditEntry, error) {
	t, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(t, userID) {
		return nil, apperr.Forbidden("You do not have access to this task")
	}
	if limit < 1 || limit > s.auditLimit {
		limit = s.auditLimit
	}
	notBefore := s.now().Add(-s.retention)
	return s.audit.ListForEntity(ctx, dom.EntityTask, taskID, limit, notBefore)
}

func (s *TaskService) load(ctx context.Context, taskID string) (dom.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, apperr.NotFound("Task not found")
		}
		return dom.Task{}, err
	}
	return t, nil
}

// invalidateCache drops cached listings for everyone who can see the task.
func (s *TaskService) invalidateCache(ctx context.Context, t dom.Task) {
	if s.cache == nil {
		return
	}
	users := make([]string, 0, len(t.Shares)+1)
	users = append(users, t.OwnerID)
	for _, sh := range t.Shares {
		users = append(users, sh.UserID)
	}
	_ = s.cache.Invalidate(ctx, users...)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// filterFingerprint keys the cache by the full query shape.
func filterFingerprint(f repo.TaskFilter) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%t|%d|%d",
		f.Status, f.Priority, strings.Join(f.Tags, ","), f.Search, f.SortBy, f.SortDesc, f.Page, f.Limit)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:8])
}
