package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xaenox/discipline-bot/internal/models"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type SQLiteStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteStorage(path string, logger *zap.Logger) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("error creating data dir: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// One connection serialises writers; every operation is a single statement.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &SQLiteStorage{db: db, logger: logger}
	if err := storage.initializeSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initializeSchema(ctx context.Context) error {
	schemaSQL, err := readMigration("sqlite.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	hasID, err := tasksHaveIDColumn(ctx, tx)
	if err != nil {
		return err
	}
	if !hasID {
		rebuildSQL, err := readMigration("sqlite_tasks_rebuild.sql")
		if err != nil {
			return fmt.Errorf("error reading migrations file: %w", err)
		}
		if _, err := tx.ExecContext(ctx, rebuildSQL); err != nil {
			return fmt.Errorf("error rebuilding tasks table: %w", err)
		}
		s.logger.Info("Migrated legacy tasks table to auto-assigned ids")
	}

	if _, err := tx.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS tasks_user_category_idx ON tasks (user_id, category)`); err != nil {
		return fmt.Errorf("error creating index: %w", err)
	}

	return tx.Commit()
}

func tasksHaveIDColumn(ctx context.Context, tx *sql.Tx) (bool, error) {
	rows, err := tx.QueryContext(ctx, `PRAGMA table_info(tasks)`)
	if err != nil {
		return false, fmt.Errorf("error reading tasks columns: %w", err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("error scanning tasks column: %w", err)
		}
		if name == "id" {
			found = true
		}
	}
	return found, rows.Err()
}

func (s *SQLiteStorage) RegisterUser(ctx context.Context, user models.UserID) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO users (user_id) VALUES (?)`, user); err != nil {
		return unavailable("error registering user", err)
	}
	return nil
}

func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]models.UserID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM users`)
	if err != nil {
		return nil, unavailable("error querying users", err)
	}
	defer rows.Close()

	var users []models.UserID
	for rows.Next() {
		var id models.UserID
		if err := rows.Scan(&id); err != nil {
			return nil, unavailable("error scanning user", err)
		}
		users = append(users, id)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("error querying users", err)
	}
	return users, nil
}

func (s *SQLiteStorage) AddTask(ctx context.Context, owner models.UserID, category models.Category, description, scheduledTime string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (user_id, category, task, time) VALUES (?, ?, ?, ?)`,
		owner, string(category), description, scheduledTime)
	if err != nil {
		return 0, unavailable("error creating task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("error reading task id", err)
	}
	return id, nil
}

func (s *SQLiteStorage) ListTasks(ctx context.Context, owner models.UserID, category models.Category) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(task, ''), COALESCE(time, '')
		FROM tasks
		WHERE user_id = ? AND category = ?
		ORDER BY id`, owner, string(category))
	if err != nil {
		return nil, unavailable("error querying tasks", err)
	}
	defer rows.Close()

	return scanTasks(rows, owner, category)
}

func (s *SQLiteStorage) DeleteTask(ctx context.Context, id int64, owner models.UserID, category models.Category) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ? AND category = ?`,
		id, owner, string(category))
	if err != nil {
		return false, unavailable("error deleting task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("error getting rows affected", err)
	}
	return n > 0, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("error pinging database", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func scanTasks(rows *sql.Rows, owner models.UserID, category models.Category) ([]models.Task, error) {
	tasks := []models.Task{}
	for rows.Next() {
		task := models.Task{Owner: owner, Category: category}
		if err := rows.Scan(&task.ID, &task.Description, &task.ScheduledTime); err != nil {
			return nil, unavailable("error scanning task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("error querying tasks", err)
	}
	return tasks, nil
}
