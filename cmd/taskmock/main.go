// Command taskmock serves the mock task API over a real port, for working
// against taskcli or any other client during development. State lives in
// memory by default; --store sqlite keeps it on disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"taskapp/internal/mockapi"
	"taskapp/internal/mockapi/store"
	"taskapp/internal/mockapi/store/memory"
	"taskapp/internal/mockapi/store/sqlite"
	"taskapp/pkg/test/factory"
)

func main() {
	addr := flag.String("addr", ":8085", "listen address")
	storeKind := flag.String("store", "memory", "backend: memory or sqlite")
	dbPath := flag.String("db", "taskmock.db", "sqlite database path, with --store sqlite")
	authRequired := flag.Bool("auth", false, "require login before touching /tasks")
	seed := flag.Int("seed", 0, "number of generated tasks to start with")
	debug := flag.Bool("debug", false, "log at debug level, including sql")
	flag.Parse()

	logger := newLogger(*debug)

	backend, err := newStore(*storeKind, *dbPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer backend.Close()

	if *seed > 0 {
		if err := seedTasks(backend, *seed); err != nil {
			logger.Fatal().Err(err).Msg("seed tasks")
		}
		logger.Info().Int("count", *seed).Msg("seeded tasks")
	}

	opts := []mockapi.Option{
		mockapi.WithStore(backend),
		mockapi.WithRequestLogger(logger),
	}
	if *authRequired {
		opts = append(opts, mockapi.WithAuthRequired())
	}
	server := mockapi.New(opts...)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", *addr).
			Str("store", *storeKind).
			Bool("auth", *authRequired).
			Msg("mock task api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("serve")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info().Msg("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func newStore(kind, dbPath string, logger zerolog.Logger) (store.Store, error) {
	switch strings.ToLower(kind) {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.NewStore(dbPath, logger)
	default:
		return nil, fmt.Errorf("unknown store %q, want memory or sqlite", kind)
	}
}

func seedTasks(backend store.Store, count int) error {
	ctx := context.Background()
	for i := 0; i < count; i++ {
		task := factory.NewTask[store.Task](map[string]any{
			"ID":        int64(0),
			"UserID":    int64(0),
			"Completed": i%3 == 0,
			"CreatedAt": time.Now().UTC(),
		})
		if _, err := backend.Tasks().Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}
