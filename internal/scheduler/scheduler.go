package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"marketplace-portal/internal/cleanup"
	"marketplace-portal/internal/config"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/ratelimit"
	"marketplace-portal/internal/search"
)

// Scheduler runs the daily maintenance job: physical cleanup of expired
// removals, stale draft expiry and a full search reindex.
type Scheduler struct {
	cron      *cron.Cron
	cleanup   *cleanup.Service
	listings  database.ListingStore
	search    *search.SearchClient
	limiter   *ratelimit.RateLimiter
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanupSvc *cleanup.Service, listings database.ListingStore, searchClient *search.SearchClient, limiter *ratelimit.RateLimiter, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		cleanup:  cleanupSvc,
		listings: listings,
		search:   searchClient,
		limiter:  limiter,
		config:   cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.DailyRunEnabled {
		log.Println("[Scheduler] daily run is disabled in configuration")
		return nil
	}

	// Parse daily run time (HH:MM format in config)
	cronSpec := s.parseDailyRunTime(s.config.Scheduler.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("[Scheduler] starting daily maintenance job...")
		if err := s.runDailyMaintenance(); err != nil {
			log.Printf("[Scheduler] daily maintenance failed: %v", err)
		} else {
			log.Println("[Scheduler] daily maintenance completed successfully")
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("[Scheduler] started with daily run at %s (cron: %s)", s.config.Scheduler.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("[Scheduler] stopped")
	}
}

// runDailyMaintenance executes the daily maintenance routine
func (s *Scheduler) runDailyMaintenance() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	// 1. Physically delete listings past the retention window
	result, err := s.cleanup.PhysicallyDelete(cleanup.CleanupConfig{
		RetentionDays:    s.config.Cleanup.RetentionDays,
		MaxDeletionCount: s.config.Cleanup.MaxDeletionCount,
	})
	if err != nil {
		log.Printf("[Scheduler] cleanup step failed: %v", err)
	} else {
		log.Printf("[Scheduler] cleanup: %d/%d deleted, %d errors",
			result.DeletedCount, result.TargetCount, result.ErrorCount)
	}

	// 2. Expire drafts that were never published
	if s.config.Cleanup.DraftExpiryDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -s.config.Cleanup.DraftExpiryDays)
		expired, err := s.listings.ExpireStaleDrafts(ctx, cutoff)
		if err != nil {
			log.Printf("[Scheduler] draft expiry failed: %v", err)
		} else {
			log.Printf("[Scheduler] expired %d stale drafts older than %s", expired, cutoff.Format("2006-01-02"))
		}
	}

	// 3. Full reindex of active listings
	if _, err := s.Reindex(ctx); err != nil {
		log.Printf("[Scheduler] reindex failed: %v", err)
		return err
	}

	// 4. Evict rate limiter clients with no recent requests
	if s.limiter != nil {
		pruned := s.limiter.Prune()
		log.Printf("[Scheduler] pruned %d idle rate limit clients", pruned)
	}

	return nil
}

// Reindex pushes every active listing into the search index and returns
// the number of listings indexed. Also exposed as an admin endpoint.
func (s *Scheduler) Reindex(ctx context.Context) (int, error) {
	start := time.Now()

	listings, err := s.listings.ActiveListings(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.search.IndexListings(listings); err != nil {
		return 0, err
	}

	log.Printf("[Scheduler] reindexed %d active listings duration_ms=%d",
		len(listings), time.Since(start).Milliseconds())
	return len(listings), nil
}

// RunNow immediately executes the maintenance job (for manual trigger)
func (s *Scheduler) RunNow() error {
	log.Println("[Scheduler] manual trigger - starting maintenance job...")
	return s.runDailyMaintenance()
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 2:00 AM if parsing fails
	log.Printf("[Scheduler] failed to parse time '%s', using default 02:00", timeStr)
	return "0 2 * * *"
}
