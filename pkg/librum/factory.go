// Package librum wires configuration, a storage backend, and the
// domain engine into a ready-to-use application.
package librum

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/librum-dev/librum/pkg/adapters/fs"
	"github.com/librum-dev/librum/pkg/adapters/sqlite"
	"github.com/librum-dev/librum/pkg/core"
	"github.com/librum-dev/librum/pkg/library"
	"github.com/librum-dev/librum/pkg/policy"
	"github.com/librum-dev/librum/pkg/report"
)

// App is the assembled application: the storage engine and the
// services on top of it.
type App struct {
	Config  Config
	Storage core.Storage
	Library *library.Service
	Reports *report.Service
}

// New opens the configured storage backend and builds the services.
//
//	app, err := librum.New(cfg, librum.WithLogger(logger))
func New(cfg Config, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	storage := o.storage
	if storage == nil {
		var err error
		switch cfg.Backend {
		case BackendSQLite:
			storage, err = sqlite.Open(sqlite.Config{
				Path:   filepath.Join(cfg.DataDir, "librum.db"),
				Logger: logger,
			})
		default:
			storage, err = fs.Open(fs.Config{
				Dir:    cfg.DataDir,
				Logger: logger,
			})
		}
		if err != nil {
			return nil, err
		}
	}

	libOpts := []library.Option{
		library.WithLogger(logger),
		library.WithFinePolicy(policy.PerDay{CentsPerDay: cfg.FineCentsPerDay}),
	}
	if o.clock != nil {
		libOpts = append(libOpts, library.WithClock(o.clock))
	}
	if o.policies != nil {
		libOpts = append(libOpts, library.WithPolicies(o.policies))
	}
	if o.fine != nil {
		libOpts = append(libOpts, library.WithFinePolicy(o.fine))
	}
	lib := library.New(storage, libOpts...)

	return &App{
		Config:  cfg,
		Storage: storage,
		Library: lib,
		Reports: report.NewService(storage, lib),
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.Storage.Close()
}
