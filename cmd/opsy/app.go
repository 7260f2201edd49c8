package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/skosovsky/opsy"
	"github.com/skosovsky/opsy/audit"
	"github.com/skosovsky/opsy/config"
	"github.com/skosovsky/opsy/devopness"
	"github.com/skosovsky/opsy/ext/opsyotel"
	"github.com/skosovsky/opsy/operations"
)

// app is the wired process: API client, operation registry and optional journal.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *devopness.Client
	registry *opsy.Registry[operations.API]
	journal  *audit.Journal
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	logger := newLogger(logOut, cfg.Log)

	a := &app{cfg: cfg, logger: logger}
	a.client = devopness.New(
		devopness.WithBaseURL(cfg.API.BaseURL),
		devopness.WithWebURL(cfg.API.WebURL),
		devopness.WithTimeout(cfg.API.Timeout),
		devopness.WithMaxRetries(cfg.API.MaxRetries),
		devopness.WithDebug(cfg.API.Debug),
		devopness.WithCredentials(devopness.Credentials{Email: cfg.Auth.Email, Password: cfg.Auth.Password}),
		devopness.WithLogger(logger.With("component", "devopness")),
	)

	var regOpts []opsy.RegistryOption
	if cfg.Audit.Path != "" {
		journal, err := audit.Open(ctx, cfg.Audit.Path, audit.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open audit journal: %w", err)
		}
		a.journal = journal
		regOpts = append(regOpts, opsy.WithOnAfterExecute(journal.Hook()))
	}

	reg, err := operations.New(regOpts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	reg.Use(
		opsy.WithLogging[operations.API](logger.With("component", "operations")),
		opsyotel.Middleware[operations.API](nil),
		opsy.WithRecovery[operations.API](),
		opsy.WithTimeout[operations.API](cfg.Server.OperationTimeout),
	)
	a.registry = reg
	return a, nil
}

func (a *app) dispatcher() opsy.Dispatcher { return a.registry.Bind(a.client) }

func (a *app) Close() error {
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}
