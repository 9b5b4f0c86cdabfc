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

	"github.com/google/uuid"

	"github.com/smolyakovd/inkpad/internal/devserver"
	"github.com/smolyakovd/inkpad/internal/logging"
)

func main() {
	addr := flag.String("a", ":8080", "address to listen on")
	secret := flag.String("s", "", "token signing secret (random when empty)")
	flag.Parse()

	log := logging.NewDefault(os.Stdout, slog.LevelDebug)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *secret == "" {
		// fresh secret per run: fine for a throwaway in-memory server
		*secret = uuid.NewString()
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: devserver.New(log, []byte(*secret)).Handler(),
	}

	go func() {
		log.Info(ctx, "devserver listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "shutdown failed", "err", err)
	}
}
