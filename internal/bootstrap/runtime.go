// Package bootstrap wires the external clients a server process depends on.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"auconnect/internal/cache"
	"auconnect/internal/config"
	"auconnect/internal/database"
	"auconnect/internal/email"
	"auconnect/internal/middleware"
	"auconnect/internal/server"
	"auconnect/internal/storage"
)

const mailFromName = "AU Connect"

// InitRuntime connects to the database and Redis and builds the mail and
// media clients. Only the database is mandatory: a missing Redis, SMTP or
// bucket configuration degrades the matching feature.
func InitRuntime(ctx context.Context, cfg *config.Config) (server.Deps, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return server.Deps{}, fmt.Errorf("database connection failed: %w", err)
	}

	media, err := NewMediaStore(ctx, cfg)
	if err != nil {
		return server.Deps{}, fmt.Errorf("media storage: %w", err)
	}

	return server.Deps{
		DB:     db,
		Redis:  cache.Connect(ctx, cfg.RedisURL),
		Mailer: NewMailer(cfg),
		Media:  media,
	}, nil
}

// NewMailer builds the SMTP sender. It is returned even when SMTP is not
// configured; the notification service checks IsConfigured before queueing.
func NewMailer(cfg *config.Config) *email.SMTPSender {
	if !cfg.SMTPConfigured() {
		middleware.Logger.Warn("SMTP not configured, connection emails disabled")
	}
	return email.NewSMTPSender(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: mailFromName,
	})
}

// NewMediaStore returns nil, nil when no bucket is configured.
func NewMediaStore(ctx context.Context, cfg *config.Config) (storage.MediaStore, error) {
	if cfg.S3Bucket == "" {
		middleware.Logger.Warn("S3_BUCKET not set, media URLs disabled")
		return nil, nil
	}
	store, err := storage.NewS3Store(ctx, storage.Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		Endpoint:     cfg.S3Endpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		return nil, err
	}
	middleware.Logger.Info("media storage ready", slog.String("bucket", cfg.S3Bucket))
	return store, nil
}
