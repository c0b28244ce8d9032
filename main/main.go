package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"safeRestServer/api"
	"safeRestServer/checker"
	"safeRestServer/config"
	"safeRestServer/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chk, cleanup, err := checker.FromConfig(ctx, cfg, log)
	if err != nil {
		log.WithField("err", err.Error()).Fatal("startup failed")
	}
	defer cleanup()

	app := api.New(cfg, chk, log)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithField("err", err.Error()).Error("shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{"port": cfg.Port, "version": config.AppVersion}).Info("server listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithField("err", err.Error()).Error("server stopped")
	}
}
