package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/pkg/logger"
	"github.com/kasbino/kasbino-backend/pkg/redis"
)

// ViewCountScheduler periodically flushes the Redis view counters
// into the businesses table.
type ViewCountScheduler struct {
	cron         *cron.Cron
	businessRepo repository.BusinessRepository
}

func NewViewCountScheduler(businessRepo repository.BusinessRepository) *ViewCountScheduler {
	return &ViewCountScheduler{
		cron:         cron.New(),
		businessRepo: businessRepo,
	}
}

// Start schedules the flush every 10 minutes.
func (s *ViewCountScheduler) Start() error {
	_, err := s.cron.AddFunc("*/10 * * * *", s.flush)
	if err != nil {
		logger.Error("Failed to add cron job for view count flush", err)
		return err
	}

	s.cron.Start()
	logger.Info("View count scheduler started (every 10 minutes)", nil)
	return nil
}

func (s *ViewCountScheduler) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := redis.DrainBusinessViews(ctx)
	if err != nil {
		logger.Error("Failed to drain view counters", err)
		return
	}
	if len(counts) == 0 {
		return
	}

	flushed := 0
	for businessID, delta := range counts {
		if err := s.businessRepo.AddViews(businessID, delta); err != nil {
			logger.Error("Failed to flush view counter", err, map[string]interface{}{
				"business_id": businessID,
				"delta":       delta,
			})
			continue
		}
		flushed++
	}

	logger.Info("View counters flushed", map[string]interface{}{
		"businesses": flushed,
	})
}

// Stop halts the scheduler.
func (s *ViewCountScheduler) Stop() {
	s.cron.Stop()
	logger.Info("View count scheduler stopped", nil)
}
