package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikmy/txnmgr/internal/api"
	"github.com/nikmy/txnmgr/internal/bootstrap"
	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/logger"
	"github.com/nikmy/txnmgr/pkg/txn"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		stdlog.Panic(errors.WrapFail(err, "load config"))
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		stdlog.Panic(errors.WrapFail(err, "init logger"))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mgr := txn.NewManager(log, cfg.Manager)

	teardown, err := bootstrap.Install(ctx, mgr, cfg.Datasources, log)
	if err != nil {
		log.Panic(errors.WrapFail(err, "install datasources"))
	}

	srv := api.NewServer(cfg.API, log, mgr)
	go func() {
		if err := srv.Serve(ctx); err != nil {
			log.Warn(errors.WrapFail(err, "serve diagnostics"))
		}
	}()

	if err := runDemo(ctx, log, mgr); err != nil {
		log.Error(errors.WrapFail(err, "run demo workload"))
	}

	<-ctx.Done()
	stdlog.Println("Graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(err)
	}
	teardown(shutdownCtx)
	mgr.StopCleanup()

	stdlog.Println("Shutdown complete")
}
