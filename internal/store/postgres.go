package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/buyside-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS saved_searches (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	config     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS search_results (
	search_id TEXT NOT NULL REFERENCES saved_searches(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	buyer     JSONB NOT NULL,
	PRIMARY KEY (search_id, position)
);

CREATE TABLE IF NOT EXISTS saved_buyers (
	project_id TEXT NOT NULL,
	buyer_id   TEXT NOT NULL,
	added_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (project_id, buyer_id)
);

CREATE INDEX IF NOT EXISTS idx_saved_searches_project ON saved_searches(project_id, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateSearch(ctx context.Context, search *model.SavedSearch) error {
	configJSON, err := json.Marshal(search.Config)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal config")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO saved_searches (id, project_id, name, config, created_at) VALUES ($1, $2, $3, $4, $5)`,
		search.ID, search.ProjectID, search.Name, configJSON, search.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: insert search %s", search.ID)
}

func (s *PostgresStore) PutResults(ctx context.Context, searchID string, results []model.ScoredBuyer) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin results tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i, sb := range results {
		buyerJSON, err := json.Marshal(sb)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal result %d", i)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO search_results (search_id, position, buyer) VALUES ($1, $2, $3)`,
			searchID, i, buyerJSON,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert result %d for search %s", i, searchID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit results")
}

func (s *PostgresStore) ListSearches(ctx context.Context, projectID string) ([]model.SavedSearchSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, name, created_at FROM saved_searches
		 WHERE project_id = $1 ORDER BY created_at DESC, id DESC`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list searches")
	}
	defer rows.Close()

	var out []model.SavedSearchSummary
	for rows.Next() {
		var sum model.SavedSearchSummary
		if err := rows.Scan(&sum.ID, &sum.ProjectID, &sum.Name, &sum.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan search summary")
		}
		out = append(out, sum)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list searches iterate")
}

func (s *PostgresStore) GetResults(ctx context.Context, searchID string) ([]model.ScoredBuyer, error) {
	var exists int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM saved_searches WHERE id = $1`, searchID,
	).Scan(&exists)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: search %s", searchID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: check search %s", searchID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT buyer FROM search_results WHERE search_id = $1 ORDER BY position`,
		searchID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get results %s", searchID)
	}
	defer rows.Close()

	results := []model.ScoredBuyer{}
	for rows.Next() {
		var buyerJSON []byte
		if err := rows.Scan(&buyerJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		var sb model.ScoredBuyer
		if err := json.Unmarshal(buyerJSON, &sb); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		results = append(results, sb)
	}
	return results, eris.Wrap(rows.Err(), "postgres: get results iterate")
}

func (s *PostgresStore) DeleteSearch(ctx context.Context, searchID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1`, searchID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete search %s", searchID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: search %s", searchID)
	}
	return nil
}

func (s *PostgresStore) SaveBuyer(ctx context.Context, projectID, buyerID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO saved_buyers (project_id, buyer_id, added_at) VALUES ($1, $2, $3)
		 ON CONFLICT (project_id, buyer_id) DO NOTHING`,
		projectID, buyerID, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save buyer %s", buyerID)
}

func (s *PostgresStore) RemoveBuyer(ctx context.Context, projectID, buyerID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM saved_buyers WHERE project_id = $1 AND buyer_id = $2`,
		projectID, buyerID,
	)
	return eris.Wrapf(err, "postgres: remove buyer %s", buyerID)
}

func (s *PostgresStore) ListSavedBuyers(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT buyer_id FROM saved_buyers WHERE project_id = $1 ORDER BY added_at, buyer_id`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list saved buyers")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan saved buyer")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "postgres: list saved buyers iterate")
}
