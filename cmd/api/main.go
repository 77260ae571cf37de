package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"portfoliocalc/cmd"
	"syscall"
	"time"
)

func main() {
	apiHandler, config, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := cmd.CloseDependencies(apiHandler); err != nil {
			apiHandler.Logger.Error(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           apiHandler.InitializeRouterEngine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		apiHandler.Logger.Infow("starting api", "port", config.Port, "commit", os.Getenv("commit_hash"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			apiHandler.Logger.Fatalw("api stopped", "error", err.Error())
		}
	}()

	<-ctx.Done()
	apiHandler.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		apiHandler.Logger.Errorw("failed to shut down cleanly", "error", err.Error())
	}
}
