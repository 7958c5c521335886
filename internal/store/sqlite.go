package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/buyside-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS saved_searches (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	config     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS search_results (
	search_id TEXT NOT NULL REFERENCES saved_searches(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	buyer     TEXT NOT NULL,
	PRIMARY KEY (search_id, position)
);

CREATE TABLE IF NOT EXISTS saved_buyers (
	project_id TEXT NOT NULL,
	buyer_id   TEXT NOT NULL,
	added_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (project_id, buyer_id)
);

CREATE INDEX IF NOT EXISTS idx_saved_searches_project ON saved_searches(project_id, created_at);
CREATE INDEX IF NOT EXISTS idx_search_results_search ON search_results(search_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSearch(ctx context.Context, search *model.SavedSearch) error {
	configJSON, err := json.Marshal(search.Config)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal config")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_searches (id, project_id, name, config, created_at) VALUES (?, ?, ?, ?, ?)`,
		search.ID, search.ProjectID, search.Name, string(configJSON), search.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert search %s", search.ID)
}

func (s *SQLiteStore) PutResults(ctx context.Context, searchID string, results []model.ScoredBuyer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin results tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO search_results (search_id, position, buyer) VALUES (?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare results insert")
	}
	defer stmt.Close()

	for i, sb := range results {
		buyerJSON, err := json.Marshal(sb)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal result %d", i)
		}
		if _, err := stmt.ExecContext(ctx, searchID, i, string(buyerJSON)); err != nil {
			return eris.Wrapf(err, "sqlite: insert result %d for search %s", i, searchID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit results")
}

func (s *SQLiteStore) ListSearches(ctx context.Context, projectID string) ([]model.SavedSearchSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, created_at FROM saved_searches
		 WHERE project_id = ? ORDER BY created_at DESC, id DESC`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list searches")
	}
	defer rows.Close()

	var out []model.SavedSearchSummary
	for rows.Next() {
		var sum model.SavedSearchSummary
		if err := rows.Scan(&sum.ID, &sum.ProjectID, &sum.Name, &sum.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search summary")
		}
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list searches iterate")
}

func (s *SQLiteStore) GetResults(ctx context.Context, searchID string) ([]model.ScoredBuyer, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM saved_searches WHERE id = ?`, searchID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: search %s", searchID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: check search %s", searchID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT buyer FROM search_results WHERE search_id = ? ORDER BY position`,
		searchID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get results %s", searchID)
	}
	defer rows.Close()

	results := []model.ScoredBuyer{}
	for rows.Next() {
		var buyerJSON string
		if err := rows.Scan(&buyerJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		var sb model.ScoredBuyer
		if err := json.Unmarshal([]byte(buyerJSON), &sb); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
		results = append(results, sb)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: get results iterate")
}

func (s *SQLiteStore) DeleteSearch(ctx context.Context, searchID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = ?`, searchID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete search %s", searchID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: search %s", searchID)
	}
	return nil
}

func (s *SQLiteStore) SaveBuyer(ctx context.Context, projectID, buyerID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_buyers (project_id, buyer_id, added_at) VALUES (?, ?, ?)
		 ON CONFLICT (project_id, buyer_id) DO NOTHING`,
		projectID, buyerID, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save buyer %s", buyerID)
}

func (s *SQLiteStore) RemoveBuyer(ctx context.Context, projectID, buyerID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM saved_buyers WHERE project_id = ? AND buyer_id = ?`,
		projectID, buyerID,
	)
	return eris.Wrapf(err, "sqlite: remove buyer %s", buyerID)
}

func (s *SQLiteStore) ListSavedBuyers(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT buyer_id FROM saved_buyers WHERE project_id = ? ORDER BY added_at, buyer_id`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list saved buyers")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan saved buyer")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: list saved buyers iterate")
}
