// Package db is the optional Postgres step-state ledger. When operators run
// the provisioner from more than one machine, the ledger records how far each
// host got so a retry from anywhere can see the last known state.
package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/groundworkhq/provision/internal/pipeline"
	_ "github.com/lib/pq"
)

type StateStore struct {
	db *sql.DB
}

func NewStateStore(uri string) (*StateStore, error) {
	db, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("error connecting to state database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging state database: %v", err)
	}

	store := &StateStore{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *StateStore) ensureSchema() error {
	query := `
        CREATE TABLE IF NOT EXISTS provision_steps (
            host TEXT NOT NULL,
            step TEXT NOT NULL,
            outcome TEXT NOT NULL,
            detail TEXT,
            run_id TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            PRIMARY KEY (host, step)
        )
    `
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("error creating ledger schema: %v", err)
	}
	return nil
}

func (s *StateStore) Close() error {
	return s.db.Close()
}

func (s *StateStore) RecordStep(host, runID string, result pipeline.Result) error {
	query := `
        INSERT INTO provision_steps (host, step, outcome, detail, run_id, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (host, step) DO UPDATE
        SET outcome = $3, detail = $4, run_id = $5, updated_at = $6
    `

	detail := ""
	if result.Err != nil {
		detail = result.Err.Error()
	}

	_, err := s.db.Exec(query,
		host,
		result.Name,
		string(result.Outcome),
		detail,
		runID,
		time.Now(),
	)
	return err
}

// LastOutcomes returns the most recently recorded outcome per step for a
// host.
func (s *StateStore) LastOutcomes(host string) (map[string]string, error) {
	query := `
        SELECT step, outcome FROM provision_steps
        WHERE host = $1
        ORDER BY updated_at ASC
    `

	rows, err := s.db.Query(query, host)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger: %v", err)
	}
	defer rows.Close()

	outcomes := make(map[string]string)
	for rows.Next() {
		var step, outcome string
		if err := rows.Scan(&step, &outcome); err != nil {
			return nil, fmt.Errorf("error scanning ledger row: %v", err)
		}
		outcomes[step] = outcome
	}
	return outcomes, rows.Err()
}

// Ledger adapts a StateStore to the engine's listener hook. Persistence is
// best-effort: a ledger write failure never fails the run.
type Ledger struct {
	Store  *StateStore
	Host   string
	RunID  string
	Logger *slog.Logger
}

func (l *Ledger) StepStarted(string) {}

func (l *Ledger) StepFinished(result pipeline.Result) {
	if err := l.Store.RecordStep(l.Host, l.RunID, result); err != nil {
		l.Logger.Warn("failed to record step in ledger", "step", result.Name, "error", err)
	}
}
