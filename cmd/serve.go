package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/buyside-cli/internal/criteria"
	"github.com/sells-group/buyside-cli/internal/filter"
	"github.com/sells-group/buyside-cli/internal/model"
	"github.com/sells-group/buyside-cli/internal/query"
	"github.com/sells-group/buyside-cli/internal/scoring"
	"github.com/sells-group/buyside-cli/internal/search"
	"github.com/sells-group/buyside-cli/internal/source"
	"github.com/sells-group/buyside-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the buyer-discovery HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		src, err := initSource()
		if err != nil {
			return err
		}

		api := &apiServer{store: st, source: src, searches: search.NewManager(st)}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	store    store.Store
	source   source.Source
	searches *search.Manager
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/match", s.handleMatch)

		r.Route("/searches", func(r chi.Router) {
			r.Get("/", s.handleListSearches)
			r.Post("/", s.handleSaveSearch)
			r.Get("/{searchID}/results", s.handleSearchResults)
			r.Delete("/{searchID}", s.handleDeleteSearch)
		})

		r.Route("/projects/{projectID}/saved", func(r chi.Router) {
			r.Get("/", s.handleListSaved)
			r.Put("/{buyerID}", s.handleSaveBuyer)
			r.Delete("/{buyerID}", s.handleRemoveBuyer)
		})
	})

	return r
}

type matchRequest struct {
	Config  model.ScoringConfig `json:"config"`
	Filters filter.State        `json:"filters"`
	Query   query.Query         `json:"query"`
}

func (s *apiServer) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Config == nil {
		req.Config = criteria.DefaultConfig()
	}
	if err := criteria.Validate(req.Config); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := req.Filters.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	buyers, err := source.Snapshot(r.Context(), s.source)
	if err != nil {
		zap.L().Error("load buyer universe", zap.Error(err))
		writeError(w, http.StatusBadGateway, "buyer source unavailable")
		return
	}

	provider, err := initProvider(r.Context(), buyers)
	if err != nil {
		zap.L().Error("init rationale provider", zap.Error(err))
		writeError(w, http.StatusBadGateway, "rationale provider unavailable")
		return
	}

	scored := scoring.New(provider).ScoreAll(buyers, req.Config)
	results := filter.Apply(scored, req.Filters, req.Query)

	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(results),
		"results": results,
	})
}

type saveSearchRequest struct {
	ProjectID string              `json:"project_id"`
	Name      string              `json:"name"`
	Config    model.ScoringConfig `json:"config"`
	Results   []model.ScoredBuyer `json:"results"`
}

func (s *apiServer) handleSaveSearch(w http.ResponseWriter, r *http.Request) {
	var req saveSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := s.searches.Save(r.Context(), req.ProjectID, req.Name, req.Config, req.Results)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": saved.ID})
}

func (s *apiServer) handleListSearches(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.searches.List(r.Context(), r.URL.Query().Get("project"))
	if err != nil {
		zap.L().Error("list searches", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list searches failed")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *apiServer) handleSearchResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.searches.LoadResults(r.Context(), chi.URLParam(r, "searchID"))
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "search not found")
			return
		}
		zap.L().Error("load search results", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load results failed")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *apiServer) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	if err := s.searches.Delete(r.Context(), chi.URLParam(r, "searchID")); err != nil {
		zap.L().Error("delete search", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleListSaved(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListSavedBuyers(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		zap.L().Error("list saved buyers", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list saved buyers failed")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *apiServer) handleSaveBuyer(w http.ResponseWriter, r *http.Request) {
	err := s.store.SaveBuyer(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "buyerID"))
	if err != nil {
		zap.L().Error("save buyer", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save buyer failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleRemoveBuyer(w http.ResponseWriter, r *http.Request) {
	err := s.store.RemoveBuyer(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "buyerID"))
	if err != nil {
		zap.L().Error("remove buyer", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "remove buyer failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
