package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paulwritescode/minidb/internal/config"
	"github.com/paulwritescode/minidb/internal/server"
	"github.com/paulwritescode/minidb/internal/storage"
	"github.com/paulwritescode/minidb/internal/types"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	types.GlobalLogger = types.InitLogger(types.ParseLevel(cfg.Log.Level), os.Stderr)

	persist, err := storage.NewPersistence(storage.PersistenceConfig{
		SnapshotPath: cfg.Snapshot.Path,
		Autosave:     cfg.Snapshot.Autosave,
		ArchiveDir:   cfg.Archive.Dir,
	})
	if err != nil {
		types.GlobalLogger.Error("initializing persistence: %v", err)
		os.Exit(1)
	}

	db := storage.New()
	if err := persist.LoadSnapshot(db); err != nil {
		types.GlobalLogger.Error("loading snapshot: %v", err)
		os.Exit(1)
	}

	srv := server.New(db, persist, cfg)
	srv.StartArchiveWorker()
	defer srv.StopArchiveWorker()

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		types.GlobalLogger.Info("%s listening on %s", cfg.AppName, cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			types.GlobalLogger.Error("server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	types.GlobalLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		types.GlobalLogger.Error("shutdown: %v", err)
	}

	if cfg.Snapshot.Path != "" {
		if err := persist.SaveSnapshot(db); err != nil {
			types.GlobalLogger.Error("final snapshot: %v", err)
		}
	}
}
