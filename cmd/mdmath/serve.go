package main

import (
	"context"
	"fmt"
	"time"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/config"
	"github.com/alnah/go-mdmath/internal/server"
)

// runServeCmd starts the HTTP render service and blocks until ctx is done.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	if err := mergeServeFlags(flags, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.verbose)
	if !flags.common.quiet && !flags.common.verbose {
		logger = newInfoLogger(env.Stderr)
	}

	poolSize := mdmath.ResolvePoolSize(resolveWorkers(flags.workers, envCfg))
	pool := env.NewPool(poolSize, converterOptions(cfg, flags.math, logger)...)
	defer pool.Close()

	// Fail fast on bad options instead of on the first request.
	conv, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	pool.Release(conv)

	srv := server.New(&poolRenderer{pool: pool}, server.Config{
		Addr:          cfg.Server.Addr,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		RenderTimeout: cfg.Server.RenderTimeout,
	}, logger)
	return srv.ListenAndServe(ctx)
}

// mergeServeFlags merges serve flags into config.
func mergeServeFlags(flags *serveFlags, cfg *config.Config) error {
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.maxBodyBytes != 0 {
		cfg.Server.MaxBodyBytes = flags.maxBodyBytes
	}
	if flags.renderTimeout != "" {
		d, err := time.ParseDuration(flags.renderTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --render-timeout %q", ErrInvalidTimeout, flags.renderTimeout)
		}
		cfg.Server.RenderTimeout = d
	}
	return mergeMathFlags(&flags.math, cfg)
}
