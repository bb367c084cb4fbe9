// Package provisioner wires configuration and dependencies for the
// workspace provisioning service.
package provisioner

import (
	"context"
	"flag"
	"fmt"
	"log"

	platformcmd "github.com/louisbranch/workroom.space/internal/platform/cmd"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/app"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/mail"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/nextcloud"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/storage"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/storage/sqlite"
)

// Config holds the service settings, populated from the environment with
// command-line overrides.
type Config struct {
	HTTPAddr string `env:"WORKROOM_SPACE_PROVISIONER_HTTP_ADDR" envDefault:":8080"`
	DBPath   string `env:"WORKROOM_SPACE_PROVISIONER_DB_PATH" envDefault:"provisioner.db"`

	NextcloudBaseURL   string `env:"WORKROOM_SPACE_NEXTCLOUD_BASE_URL"`
	NextcloudAdminUser string `env:"WORKROOM_SPACE_NEXTCLOUD_ADMIN_USER"`
	NextcloudAdminPass string `env:"WORKROOM_SPACE_NEXTCLOUD_ADMIN_PASS"`

	SMTPHost string `env:"WORKROOM_SPACE_SMTP_HOST"`
	SMTPPort int    `env:"WORKROOM_SPACE_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"WORKROOM_SPACE_SMTP_USER"`
	SMTPPass string `env:"WORKROOM_SPACE_SMTP_PASS"`
	SMTPFrom string `env:"WORKROOM_SPACE_SMTP_FROM"`
}

// ParseConfig loads environment defaults and applies flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.NextcloudBaseURL, "nextcloud-url", cfg.NextcloudBaseURL, "Nextcloud base URL")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	if cfg.NextcloudBaseURL == "" {
		return Config{}, fmt.Errorf("nextcloud base url is required")
	}
	return cfg, nil
}

// Run starts the provisioning service and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceProvisioner, func(ctx context.Context) error {
		var store storage.Store
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open registry: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("provisioner: close registry: %v", err)
			}
		}()

		client := nextcloud.New(nextcloud.Config{
			BaseURL:   cfg.NextcloudBaseURL,
			AdminUser: cfg.NextcloudAdminUser,
			AdminPass: cfg.NextcloudAdminPass,
		})
		mailer := mail.New(mail.Config{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})

		service := domain.NewService(domain.Dependencies{
			Identity: client,
			Files:    client,
			Chat:     client,
			Calendar: client,
			Board:    client,
			Notifier: client,
			Mailer:   mailer,
			Registry: store,
		})

		return app.Run(ctx, app.Config{Addr: cfg.HTTPAddr, Service: service})
	})
}
