package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/berckan/domaintracker/internal/checker"
	"github.com/berckan/domaintracker/internal/config"
	"github.com/berckan/domaintracker/internal/handlers"
	"github.com/berckan/domaintracker/internal/monitor"
	"github.com/berckan/domaintracker/internal/store"
	"github.com/berckan/domaintracker/internal/telegram"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	log.Info("domain tracker starting", "state_file", cfg.StateFile)

	st, err := store.Open(cfg.StateFile, cfg.DefaultDomains, log)
	if err != nil {
		log.Error("store open failed", "error", err)
		os.Exit(1)
	}

	client := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.SendTimeoutDur, log)
	prober := checker.New(cfg.Monitoring.RDAPTimeoutDur, cfg.Monitoring.WhoisTimeoutDur, log)

	mon := monitor.New(st, prober, client,
		cfg.Telegram.AlertChatID, cfg.Telegram.ReportChatID,
		cfg.Monitoring.CheckIntervalDur, cfg.Monitoring.ReportEvery, cfg.Monitoring.MaxConcurrent,
		log)

	bot := telegram.NewBot(client, st,
		[]string{cfg.Telegram.AlertChatID, cfg.Telegram.ReportChatID}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mon.Run(ctx) })
	g.Go(func() error { return bot.Run(ctx) })

	if cfg.Server.Addr != "" {
		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handlers.New(st, log).Routes(),
		}
		g.Go(func() error {
			log.Info("status API listening", "addr", cfg.Server.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("tracker stopped", "error", err)
		os.Exit(1)
	}
	log.Info("tracker stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
