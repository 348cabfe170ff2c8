package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

const cacheFile = "fieldsync.db"

// TaskCache keeps the last fetched task list and a journal of the updates
// this device sent, so the CLI can show something without the network.
type TaskCache struct {
	db *sql.DB
}

func CachePath(config model.Config) string {
	return filepath.Join(config.DataDir, cacheFile)
}

func OpenTaskCache(dbPath string) (*TaskCache, error) {
	dbPath = expandHomeDir(dbPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("❌ Failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to open cache: %w", err)
	}
	// database/sql pools connections; sqlite wants one writer.
	db.SetMaxOpenConns(1)

	cache := &TaskCache{db: db}
	if err := cache.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("❌ Failed to migrate cache: %w", err)
	}
	return cache, nil
}

func (c *TaskCache) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT NOT NULL,
			position INTEGER NOT NULL,
			ticket_number TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			issue_type TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_city TEXT NOT NULL,
			customer_address TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (position)
		);

		CREATE TABLE IF NOT EXISTS task_updates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL,
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			succeeded INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_id ON tasks(id);
		CREATE INDEX IF NOT EXISTS idx_updates_task ON task_updates(task_id);
	`
	_, err := c.db.Exec(schema)
	return err
}

func (c *TaskCache) Close() error {
	return c.db.Close()
}

// ReplaceTasks swaps the cached snapshot for tasks in one transaction,
// keeping their order.
func (c *TaskCache) ReplaceTasks(tasks []model.Task, syncedAt time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("❌ Failed to clear cached tasks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tasks (id, position, ticket_number, title, description, status, priority, issue_type,
			customer_name, customer_city, customer_address, customer_phone, customer_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range tasks {
		if _, err := stmt.Exec(t.ID, i, t.TicketNumber, t.Title, t.Description, t.Status, t.Priority, t.IssueType,
			t.CustomerName, t.CustomerCity, t.CustomerAddress, t.CustomerPhone, t.CustomerEmail, t.CreatedAt, t.UpdatedAt); err != nil {
			return fmt.Errorf("❌ Failed to cache task %s: %w", t.ID, err)
		}
	}

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('synced_at', ?)`,
		syncedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *TaskCache) LoadTasks() ([]model.Task, error) {
	rows, err := c.db.Query(`
		SELECT id, ticket_number, title, description, status, priority, issue_type,
			customer_name, customer_city, customer_address, customer_phone, customer_email, created_at, updated_at
		FROM tasks ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to read cached tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.Title, &t.Description, &t.Status, &t.Priority, &t.IssueType,
			&t.CustomerName, &t.CustomerCity, &t.CustomerAddress, &t.CustomerPhone, &t.CustomerEmail, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SyncedAt returns when the snapshot was last replaced, zero if never.
func (c *TaskCache) SyncedAt() (time.Time, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM meta WHERE key = 'synced_at'`).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	} else if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

func (c *TaskCache) RecordUpdate(u model.TaskUpdate) (int64, error) {
	if u.CreatedAt == "" {
		u.CreatedAt = time.Now().Format("2006-01-02 15:04:05")
	}
	res, err := c.db.Exec(`
		INSERT INTO task_updates (task_id, field, value, succeeded, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.TaskID, u.Field, u.Value, u.Succeeded, u.Error, u.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("❌ Failed to record update: %w", err)
	}
	return res.LastInsertId()
}

// ListUpdates returns the journal for one task, oldest first. An empty
// taskID lists every task.
func (c *TaskCache) ListUpdates(taskID string) ([]model.TaskUpdate, error) {
	query := `SELECT id, task_id, field, value, succeeded, error, created_at FROM task_updates`
	var args []any
	if taskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY id`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to read update journal: %w", err)
	}
	defer rows.Close()

	updates := []model.TaskUpdate{}
	for rows.Next() {
		var u model.TaskUpdate
		if err := rows.Scan(&u.ID, &u.TaskID, &u.Field, &u.Value, &u.Succeeded, &u.Error, &u.CreatedAt); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// Clear removes the snapshot and the journal, used on logout.
func (c *TaskCache) Clear() error {
	_, err := c.db.Exec(`DELETE FROM tasks; DELETE FROM task_updates; DELETE FROM meta;`)
	return err
}
