package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lk16/reversi/internal"
)

func main() {
	// Setup app
	app, cfg := internal.SetupApp()

	// Stop running games and close connections on interrupt
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		<-signals

		slog.Info("Shutting down")
		if err := app.Shutdown(); err != nil {
			slog.Error("Failed to shut down", "error", err)
		}
	}()

	// Start server
	address := cfg.ServerHost + ":" + cfg.ServerPort
	if err := app.Listen(address); err != nil {
		log.Fatal(err)
	}
}
