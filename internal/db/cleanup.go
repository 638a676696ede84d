package db

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultCleanupInterval = 1 * time.Hour
)

// CleanupService purges expired remember tokens in the background. Expiry is
// still enforced lazily at validation time; this only keeps the table small.
type CleanupService struct {
	rememberTokens *RememberTokenRepository
	interval       time.Duration
}

func NewCleanupService(rememberTokens *RememberTokenRepository) *CleanupService {
	return &CleanupService{
		rememberTokens: rememberTokens,
		interval:       DefaultCleanupInterval,
	}
}

func (s *CleanupService) Start(ctx context.Context) {
	slog.Info("starting token cleanup service", "component", "cleanup", "interval", s.interval)

	s.runCleanup(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping token cleanup service", "component", "cleanup")
			return
		case <-ticker.C:
			s.runCleanup(ctx)
		}
	}
}

func (s *CleanupService) runCleanup(ctx context.Context) {
	deleted, err := s.rememberTokens.DeleteExpired(ctx)
	if err != nil {
		slog.Error("error deleting expired remember tokens", "component", "cleanup", "error", err)
	} else if deleted > 0 {
		slog.Info("deleted expired remember tokens", "component", "cleanup", "count", deleted)
	}
}
