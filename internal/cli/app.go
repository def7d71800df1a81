package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/emiliopalmerini/mclass/internal/adapters/storage"
	"github.com/emiliopalmerini/mclass/internal/adapters/turso"
	"github.com/emiliopalmerini/mclass/internal/analytics"
	"github.com/emiliopalmerini/mclass/internal/database"
	"github.com/emiliopalmerini/mclass/internal/infrastructure/config"
	"github.com/emiliopalmerini/mclass/internal/migrate"
	"github.com/emiliopalmerini/mclass/internal/ports"
	"github.com/emiliopalmerini/mclass/internal/util"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     ports.SessionRecordStore
	Analytics *analytics.Service

	db *sql.DB
}

// NewAppContext loads configuration and opens the configured record store.
func NewAppContext(ctx context.Context, path string, logOut io.Writer) (*AppContext, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	return newAppContextFromConfig(ctx, cfg, logOut)
}

func newAppContextFromConfig(ctx context.Context, cfg *config.Config, logOut io.Writer) (*AppContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(logOut, cfg)
	if err != nil {
		return nil, err
	}

	store, db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &AppContext{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Analytics: analytics.NewService(store, logger),
		db:        db,
	}, nil
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// loadConfig uses path when given, else the default config file if one exists.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = defaultConfigFile()
	}
	return config.Load(path)
}

func defaultConfigFile() string {
	dir, err := util.GetXDGConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func openStore(ctx context.Context, cfg *config.Config) (ports.SessionRecordStore, *sql.DB, error) {
	switch cfg.Store {
	case config.StoreLibSQL:
		db, err := database.Open(cfg.DatabaseURL, cfg.AuthToken)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := migrate.RunAll(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return turso.NewSessionRecordRepository(db), db, nil
	default:
		var (
			store *storage.RecordStore
			err   error
		)
		if cfg.DataDir != "" {
			store, err = storage.NewRecordStore(cfg.DataDir)
		} else {
			store, err = storage.NewDefaultRecordStore()
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open record store: %w", err)
		}
		return store, nil, nil
	}
}

// openFrameArchive returns nil when frame archiving is off.
func openFrameArchive(cfg *config.Config) (*storage.FrameArchive, error) {
	if !cfg.ArchiveFrames {
		return nil, nil
	}
	var (
		archive *storage.FrameArchive
		err     error
	)
	switch {
	case cfg.FramesDir != "":
		archive, err = storage.NewFrameArchive(cfg.FramesDir)
	case cfg.DataDir != "":
		archive, err = storage.NewFrameArchive(filepath.Join(cfg.DataDir, "frames"))
	default:
		archive, err = storage.NewDefaultFrameArchive()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open frame archive: %w", err)
	}
	return archive, nil
}
