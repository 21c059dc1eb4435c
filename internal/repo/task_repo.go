package repo

import (
	"context"
	"fmt"
	"strings"

	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskFilter narrows and orders a task listing. Page is 1-based.
type TaskFilter struct {
	Status   dom.Status
	Priority dom.Priority
	Tags     []string
	Search   string
	SortBy   string // one of the sortColumns keys
	SortDesc bool
	Page     int
	Limit    int
}

// sortColumns whitelists API sort fields against real columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

// SortColumn maps an API sort field to its column, defaulting to created_at.
func SortColumn(field string) (string, bool) {
	if field == "" {
		return "created_at", true
	}
	col, ok := sortColumns[field]
	if !ok {
		return "", false
	}
	return col, true
}

type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, id string) (dom.Task, error)
	// List returns the page of tasks userID owns or is shared on, plus the
	// total count before pagination.
	List(ctx context.Context, userID string, f TaskFilter) ([]dom.Task, int, error)
	Update(ctx context.Context, t dom.Task) (dom.Task, error)
	SoftDelete(ctx context.Context, id string) error
	UpsertShare(ctx context.Context, taskID, userID string, p dom.Permission) error
	RemoveShare(ctx context.Context, taskID, userID string) error
}

// PGTaskRepo implements TaskRepo with Postgres. Soft-deleted rows are
// excluded by composing notDeleted into every query here, never by hidden
// interception elsewhere.
type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date, t.tags, t.owner_id, t.is_deleted, t.created_at, t.updated_at`

const notDeleted = `t.is_deleted = FALSE`

func scanTask(row interface{ Scan(...any) error }) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
		&t.Tags, &t.OwnerID, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (id, title, description, status, priority, due_date, tags, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns
	out, err := scanTask(r.db.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.Tags, t.OwnerID))
	if err != nil {
		return dom.Task{}, err
	}
	out.Shares = nil
	return out, nil
}

func (r *PGTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1 AND ` + notDeleted
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return dom.Task{}, err
	}
	shares, err := r.loadShares(ctx, []string{t.ID})
	if err != nil {
		return dom.Task{}, err
	}
	t.Shares = shares[t.ID]
	return t, nil
}

func (r *PGTaskRepo) List(ctx context.Context, userID string, f TaskFilter) ([]dom.Task, int, error) {
	where := []string{
		notDeleted,
		`(t.owner_id = $1 OR EXISTS (SELECT 1 FROM task_shares s WHERE s.task_id = t.id AND s.user_id = $1))`,
	}
	args := []any{userID}

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		where = append(where, fmt.Sprintf("t.priority = $%d", len(args)))
	}
	if len(f.Tags) > 0 {
		args = append(args, f.Tags)
		where = append(where, fmt.Sprintf("t.tags && $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(t.title ILIKE $%d OR t.description ILIKE $%d)", len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks t WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := SortColumn(f.SortBy)
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM tasks t WHERE %s ORDER BY t.%s %s, t.id %s LIMIT $%d OFFSET $%d`,
		taskColumns, cond, col, dir, dir, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []dom.Task
	var ids []string
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	shares, err := r.loadShares(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		list[i].Shares = shares[list[i].ID]
	}
	return list, total, nil
}

func (r *PGTaskRepo) Update(ctx context.Context, t dom.Task) (dom.Task, error) {
	// owner_id is immutable and deliberately absent from the SET list.
	query := `
		UPDATE tasks t SET title = $2, description = $3, status = $4, priority = $5,
			due_date = $6, tags = $7, updated_at = NOW()
		WHERE t.id = $1 AND ` + notDeleted + `
		RETURNING ` + taskColumns
	out, err := scanTask(r.db.QueryRow(ctx, query,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.Tags))
	if err != nil {
		return dom.Task{}, err
	}
	out.Shares = t.Shares
	return out, nil
}

func (r *PGTaskRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks t SET is_deleted = TRUE, updated_at = NOW() WHERE t.id = $1 AND `+notDeleted, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpsertShare adds or replaces the share entry for userID. The original
// insert position is kept on replacement.
func (r *PGTaskRepo) UpsertShare(ctx context.Context, taskID, userID string, p dom.Permission) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO task_shares (task_id, user_id, permission)
		VALUES ($1, $2, $3)
		ON CONFLICT (task_id, user_id) DO UPDATE SET permission = EXCLUDED.permission`,
		taskID, userID, p)
	return err
}

// RemoveShare drops the share entry for userID; absent entries are not an error.
func (r *PGTaskRepo) RemoveShare(ctx context.Context, taskID, userID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM task_shares WHERE task_id = $1 AND user_id = $2`, taskID, userID)
	return err
}

func (r *PGTaskRepo) loadShares(ctx context.Context, taskIDs []string) (map[string][]dom.Share, error) {
	out := make(map[string][]dom.Share, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT task_id, user_id, permission FROM task_shares
		WHERE task_id = ANY($1) ORDER BY created_at, user_id`, taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var taskID string
		var s dom.Share
		if err := rows.Scan(&taskID, &s.UserID, &s.Permission); err != nil {
			return nil, err
		}
		out[taskID] = append(out[taskID], s)
	}
	return out, rows.Err()
}
