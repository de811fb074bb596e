package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/components"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
)

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		components.SetupLogger("local").Error("load config failed", "err", err)
		return err
	}
	logger := components.SetupLogger(cfg.Env)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	comps, err := components.InitComponents(ctx, cfg, logger)
	if err != nil {
		logger.Error("could not init components", "err", err)
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := comps.HttpServer.Run(ctx); err != nil {
			logger.Error("http server failed", "err", err)
		}
		logger.Info("http server stopped")
	}()

	if comps.Webhook != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			comps.Webhook.Run(ctx)
		}()
	}

	if comps.Recovery != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			comps.Recovery.Run(ctx)
		}()
	}

	if comps.Consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			comps.Consumer.Run(ctx)
		}()
	}

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChan

	stop()
	logger.Info("captured signal, initiating shutdown", "signal", sig.String())

	wg.Wait()

	logger.Info("shutting down the services...")
	comps.ShutdownAll()
	logger.Info("gracefully shutting down the servers")

	return nil
}
