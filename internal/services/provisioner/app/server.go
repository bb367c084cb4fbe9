package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/louisbranch/workroom.space/internal/platform/timeouts"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr    string
	Service *domain.Service
}

// Run serves the provisioning endpoint until ctx is canceled, then shuts
// down gracefully.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Service == nil {
		return fmt.Errorf("provisioning service is required")
	}

	handler := NewHandler(cfg.Service)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("provisioner: listening on %s", cfg.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
