// Package serverapp wires configuration, database, schema synthesis, and
// HTTP serving into one runnable application.
package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/graphql-go/handler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mysql-graphql/internal/config"
	"mysql-graphql/internal/dbexec"
	"mysql-graphql/internal/logging"
	"mysql-graphql/internal/metadata"
	"mysql-graphql/internal/middleware"
	"mysql-graphql/internal/naming"
	"mysql-graphql/internal/resolver"
)

// App owns the server's resources: the database pool, the HTTP server,
// and the synthesized schema.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	db  *sql.DB
	srv *http.Server

	shutdownOnce sync.Once
	shutdownErr  error
}

// New builds the application: connects the pool, introspects the
// database, synthesizes the GraphQL schema, and prepares the HTTP
// server. Nothing listens until Start.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	db, err := sql.Open("mysql", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Database.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Database.Pool.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	namer := naming.New(naming.Config{
		PluralOverrides:   cfg.Schema.PluralOverrides,
		SingularOverrides: cfg.Schema.SingularOverrides,
	})

	dbSchema, err := metadata.Introspect(ctx, db, cfg.Database.Database, namer)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("introspecting schema: %w", err)
	}
	if len(cfg.Schema.SerializedJSONColumns) > 0 {
		if err := metadata.ApplySerializedJSONColumns(dbSchema, cfg.Schema.SerializedJSONColumns); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying column annotations: %w", err)
		}
	}
	logger.Info("schema introspected",
		slog.String("database", cfg.Database.Database),
		slog.Int("tables", len(dbSchema.Tables)),
	)

	r := resolver.New(dbexec.NewStandardExecutor(db), dbSchema, resolver.Options{
		Naming: naming.Config{
			PluralOverrides:   cfg.Schema.PluralOverrides,
			SingularOverrides: cfg.Schema.SingularOverrides,
		},
		DefaultLimit: cfg.Schema.DefaultLimit,
		MaxLimit:     cfg.Schema.MaxLimit,
		Logger:       logger.Logger,
	})
	graphqlSchema, err := r.BuildGraphQLSchema()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("building GraphQL schema: %w", err)
	}

	graphqlHandler := handler.New(&handler.Config{
		Schema:     &graphqlSchema,
		Pretty:     cfg.Server.Pretty,
		GraphiQL:   cfg.Server.GraphiQL,
		Playground: false,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	mux := http.NewServeMux()
	mux.Handle("/graphql", graphqlHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/graphql", http.StatusFound)
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/healthz", healthHandler(db))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	root := middleware.LoggingMiddleware(logger)(
		middleware.MetricsMiddleware(httpMetrics)(mux),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      root,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{cfg: cfg, logger: logger, db: db, srv: srv}, nil
}

// Start serves HTTP until the listener fails or Shutdown is called.
func (a *App) Start() error {
	a.logger.Info("server listening", slog.String("addr", a.srv.Addr))
	if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully releases all acquired resources. It is safe to
// call multiple times.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		timeout := a.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := a.srv.Shutdown(shutdownCtx); err != nil {
			a.shutdownErr = err
		}
		if err := a.db.Close(); err != nil && a.shutdownErr == nil {
			a.shutdownErr = err
		}
	})
	return a.shutdownErr
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
