package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/buyside-cli/internal/model"
	"github.com/sells-group/buyside-cli/internal/rationale"
	"github.com/sells-group/buyside-cli/internal/source"
	"github.com/sells-group/buyside-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "buyside.db"
		}
		st, err := store.NewSQLite(path)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initSource() (source.Source, error) {
	switch cfg.Source.Kind {
	case "file":
		return source.NewFile(cfg.Source.File)
	case "http":
		if cfg.Source.BaseURL == "" {
			return nil, eris.New("source base URL is required (BUYSIDE_SOURCE_BASE_URL)")
		}
		return source.NewHTTP(source.HTTPOptions{
			BaseURL:    cfg.Source.BaseURL,
			APIKey:     cfg.Source.APIKey,
			UserAgent:  "buyside-cli",
			Timeout:    time.Duration(cfg.Source.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Source.MaxRetries,
			RatePerSec: cfg.Source.RatePerSec,
		}), nil
	default:
		return nil, eris.Errorf("unsupported source kind: %s", cfg.Source.Kind)
	}
}

// initProvider picks the rationale backend. With an Anthropic key the
// provider is primed over the full buyer universe before scoring; without
// one, sub-scores come from the records themselves.
func initProvider(ctx context.Context, buyers []model.BuyerRecord) (rationale.Provider, error) {
	if cfg.Anthropic.Key == "" {
		return rationale.NewStatic(), nil
	}

	p := rationale.NewAnthropic(cfg.Anthropic.Key, cfg.Anthropic.Model)
	if err := p.Prime(ctx, buyers); err != nil {
		return nil, eris.Wrap(err, "prime rationale provider")
	}
	return p, nil
}
