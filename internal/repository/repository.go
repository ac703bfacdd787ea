// Package repository opens the configured storage backend.
package repository

import (
	"database/sql"
	"fmt"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
	"github.com/sadewadee/hashcat-dashboard/internal/repository/postgres"
	"github.com/sadewadee/hashcat-dashboard/internal/repository/sqlite"
)

// Store is an open database with its repositories
type Store struct {
	DB          *sql.DB
	Backend     string
	Tasks       domain.TaskRepository
	Agents      domain.AgentRepository
	Results     domain.ResultRepository
	Performance domain.PerformanceRepository
}

// Open connects to PostgreSQL for postgres:// DSNs and to a SQLite file
// otherwise, then applies pending migrations.
func Open(dsn string) (*Store, error) {
	if postgres.IsPostgresDSN(dsn) {
		db, err := postgres.OpenConnection(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := postgres.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		repos := postgres.NewRepositories(db)
		return &Store{
			DB:          db,
			Backend:     "postgres",
			Tasks:       repos.Tasks,
			Agents:      repos.Agents,
			Results:     repos.Results,
			Performance: repos.Performance,
		}, nil
	}

	db, err := sqlite.OpenConnection(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := sqlite.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repos := sqlite.NewRepositories(db)
	return &Store{
		DB:          db,
		Backend:     "sqlite",
		Tasks:       repos.Tasks,
		Agents:      repos.Agents,
		Results:     repos.Results,
		Performance: repos.Performance,
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.DB.Close()
}
