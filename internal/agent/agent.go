package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	config "github.com/mwantia/screener/internal/config/server"
	"github.com/mwantia/screener/internal/server"
	"github.com/mwantia/screener/pkg/db/store"
	"github.com/mwantia/screener/pkg/log"
)

type ScreenerAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg     *config.BaseServerConfig
	sc      *container.ServiceContainer
	log     log.LoggerService
	session *Session
	server  *server.Server
}

func NewAgent(cfg *config.BaseServerConfig) *ScreenerAgent {
	return &ScreenerAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("screener", cfg.Log),
	}
}

func (sa *ScreenerAgent) setupServices(ctx context.Context) error {
	errs := container.Errors{}

	sa.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](sa.sc,
		container.With[log.LoggerService](),
		container.WithInstance(sa.log)))

	session, err := NewSession(ctx, sa.cfg, sa.log, nil)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	sa.session = session

	sa.log.Debug("Registering 'KeyValueStore' (%s)...", sa.cfg.Metadata.Type)
	switch kv := session.KV.(type) {
	case *store.SQLiteStore:
		errs.Add(container.Register[store.SQLiteStore](sa.sc,
			container.With[store.KeyValueStore](),
			container.WithInstance(kv)))
	case *store.MemoryStore:
		errs.Add(container.Register[store.MemoryStore](sa.sc,
			container.With[store.KeyValueStore](),
			container.WithInstance(kv)))
	}

	if err := errs.Errors(); err != nil {
		session.Close()
		return err
	}

	logger, err := log.Resolve(ctx, sa.sc, "logger:server")
	if err != nil {
		return err
	}
	sa.server = server.NewServer(sa.cfg.HTTP, session.Explorer, session.KV, logger)

	return nil
}

func (sa *ScreenerAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	timeout, err := time.ParseDuration(sa.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	sa.mutex.Lock()
	if err := sa.setupServices(ctx); err != nil {
		sa.mutex.Unlock()
		return err
	}
	sa.mutex.Unlock()

	sa.wait.Add(1)
	go func() {
		defer sa.wait.Done()
		sa.log.Info("Loading records from %s...", sa.session.Source)
		if err := sa.session.Explorer.Open(ctx, sa.cfg.HTTP.ResultsPath); err != nil {
			sa.log.Warn("Serving an empty record set: %v", err)
		}
	}()

	serveErr := sa.server.Serve(ctx, timeout)
	cancel()

	shutdown, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := sa.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	sa.wait.Wait()

	if err := sa.session.Close(); err != nil {
		sa.log.Warn("Failed to close store: %v", err)
	}
	return serveErr
}
