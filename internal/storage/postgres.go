package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/xaenox/discipline-bot/internal/models"
	"go.uber.org/zap"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	return OpenPostgres(config.DSN(), logger)
}

// OpenPostgres connects using a libpq connection string or URL.
func OpenPostgres(dsn string, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	// Initialize database schema
	if err := storage.initializeSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema(ctx context.Context) error {
	migrationSQL, err := readMigration("postgres.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, migrationSQL); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	s.logger.Debug("Postgres schema is up to date")
	return nil
}

func (s *PostgresStorage) RegisterUser(ctx context.Context, user models.UserID) error {
	query := `INSERT INTO users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, user); err != nil {
		return unavailable("error registering user", err)
	}
	return nil
}

func (s *PostgresStorage) ListUsers(ctx context.Context) ([]models.UserID, error) {
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

func (s *PostgresStorage) AddTask(ctx context.Context, owner models.UserID, category models.Category, description, scheduledTime string) (int64, error) {
	query := `
		INSERT INTO tasks (user_id, category, task, time)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, query, owner, string(category), description, scheduledTime).Scan(&id)
	if err != nil {
		return 0, unavailable("error creating task", err)
	}
	return id, nil
}

func (s *PostgresStorage) ListTasks(ctx context.Context, owner models.UserID, category models.Category) ([]models.Task, error) {
	query := `
		SELECT id, COALESCE(task, ''), COALESCE(time, '')
		FROM tasks
		WHERE user_id = $1 AND category = $2
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, owner, string(category))
	if err != nil {
		return nil, unavailable("error querying tasks", err)
	}
	defer rows.Close()

	return scanTasks(rows, owner, category)
}

func (s *PostgresStorage) DeleteTask(ctx context.Context, id int64, owner models.UserID, category models.Category) (bool, error) {
	query := `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2 AND category = $3`

	result, err := s.db.ExecContext(ctx, query, id, owner, string(category))
	if err != nil {
		return false, unavailable("error deleting task", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, unavailable("error getting rows affected", err)
	}

	return rowsAffected > 0, nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("error pinging database", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
