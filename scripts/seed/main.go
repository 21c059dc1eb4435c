// Seed inserts a demo admin, two users and a handful of tasks. Intended
// for local development only; it refuses to run without PG_DSN.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
)

func main() {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		log.Fatal("PG_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("pg connect: %v", err)
	}
	defer pool.Close()

	users := []struct {
		email, name, password string
		role                  dom.Role
	}{
		{"admin@example.com", "Admin", "Admin123", dom.RoleAdmin},
		{"alice@example.com", "Alice", "Alice123", dom.RoleUser},
		{"bob@example.com", "Bob", "Bob12345", dom.RoleUser},
	}

	ids := map[string]string{}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("bcrypt: %v", err)
		}
		id := dom.NewID()
		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, email, name, password_hash, role, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			ON CONFLICT (email) DO NOTHING`,
			id, u.email, u.name, string(hash), u.role)
		if err != nil {
			log.Fatalf("insert user %s: %v", u.email, err)
		}
		// Re-read in case the user already existed.
		if err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, u.email).Scan(&id); err != nil {
			log.Fatalf("read user %s: %v", u.email, err)
		}
		ids[u.email] = id
		fmt.Printf("user %s -> %s\n", u.email, id)
	}

	due := time.Now().Add(72 * time.Hour)
	tasks := []struct {
		owner, title string
		status       dom.Status
		priority     dom.Priority
		due          *time.Time
		tags         []string
	}{
		{"alice@example.com", "Write quarterly report", dom.StatusInProgress, dom.PriorityHigh, &due, []string{"work", "reports"}},
		{"alice@example.com", "Book dentist appointment", dom.StatusTodo, dom.PriorityLow, nil, []string{"personal"}},
		{"bob@example.com", "Review deployment checklist", dom.StatusTodo, dom.PriorityMedium, nil, []string{"work", "ops"}},
	}

	for _, t := range tasks {
		taskID := dom.NewID()
		_, err := pool.Exec(ctx, `
			INSERT INTO tasks (id, title, status, priority, due_date, tags, owner_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			taskID, t.title, t.status, t.priority, t.due, t.tags, ids[t.owner])
		if err != nil {
			log.Fatalf("insert task %q: %v", t.title, err)
		}
		fmt.Printf("task %q -> %s\n", t.title, taskID)
	}

	// Alice shares her report with Bob.
	_, err = pool.Exec(ctx, `
		INSERT INTO task_shares (task_id, user_id, permission)
		SELECT t.id, $1, 'edit' FROM tasks t
		WHERE t.owner_id = $2 AND t.title = 'Write quarterly report'
		ON CONFLICT (task_id, user_id) DO UPDATE SET permission = EXCLUDED.permission`,
		ids["bob@example.com"], ids["alice@example.com"])
	if err != nil {
		log.Fatalf("share task: %v", err)
	}

	fmt.Println("seed complete")
}
