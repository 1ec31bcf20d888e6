// Package worker runs the background re-analysis scheduler.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"health-claims/internal/models"
	"health-claims/internal/services"

	"gorm.io/gorm"
)

// Config controls the re-analysis schedule.
type Config struct {
	// CheckInterval is how often the scheduler looks for stale records.
	CheckInterval time.Duration
	// MaxAge marks an influencer stale once its last analysis is older.
	MaxAge time.Duration
	// BatchSize caps how many influencers one pass re-analyzes.
	BatchSize int
}

// DefaultConfig returns the scheduler defaults used by the server.
func DefaultConfig() Config {
	return Config{
		CheckInterval: time.Hour,
		MaxAge:        7 * 24 * time.Hour,
		BatchSize:     5,
	}
}

// WorkerService periodically re-analyzes influencers whose analysis
// has gone stale. Each pass runs sequentially, so at most one
// background analysis writes to a given influencer at a time.
type WorkerService struct {
	db          *gorm.DB
	influencers *services.InfluencersService
	cfg         Config
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     bool
	mu          sync.RWMutex

	lastRun    time.Time
	reanalyzed int
	failedRuns int
}

// NewWorkerService creates a new worker service.
func NewWorkerService(db *gorm.DB, influencers *services.InfluencersService, cfg Config) *WorkerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerService{
		db:          db,
		influencers: influencers,
		cfg:         cfg,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the background scheduler.
func (ws *WorkerService) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		return nil // Already running
	}

	log.Println("Starting re-analysis scheduler...")

	ws.wg.Add(1)
	go func() {
		defer ws.wg.Done()
		ws.run()
	}()

	ws.running = true
	return nil
}

// Stop stops the scheduler and waits for the current pass to finish.
func (ws *WorkerService) Stop() {
	ws.mu.Lock()
	if !ws.running {
		ws.mu.Unlock()
		return // Not running
	}
	ws.running = false
	ws.mu.Unlock()

	log.Println("Stopping re-analysis scheduler...")
	ws.cancel()
	// An in-flight pass takes ws.mu to update its counters, so the
	// lock must not be held while waiting for it.
	ws.wg.Wait()
	log.Println("Re-analysis scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running.
func (ws *WorkerService) IsRunning() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.running
}

func (ws *WorkerService) run() {
	ticker := time.NewTicker(ws.cfg.CheckInterval)
	defer ticker.Stop()

	// First pass runs right away so a fresh deployment does not sit
	// idle for a full interval before catching up.
	ws.reanalyzeStale()

	for {
		select {
		case <-ws.ctx.Done():
			return
		case <-ticker.C:
			ws.reanalyzeStale()
		}
	}
}

// reanalyzeStale finds influencers with missing or outdated analysis
// and runs the pipeline for each in turn.
func (ws *WorkerService) reanalyzeStale() {
	cutoff := time.Now().Add(-ws.cfg.MaxAge)

	var stale []models.Influencer
	err := ws.db.
		Where("is_active = ?", true).
		Where("analysis_last_analysis IS NULL OR analysis_last_analysis < ?", cutoff).
		Order("analysis_last_analysis ASC NULLS FIRST").
		Limit(ws.cfg.BatchSize).
		Find(&stale).Error
	if err != nil {
		log.Printf("Failed to query stale influencers: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	log.Printf("Re-analyzing %d stale influencers...", len(stale))
	for _, influencer := range stale {
		if ws.ctx.Err() != nil {
			return
		}
		if _, err := ws.influencers.Analyze(ws.ctx, influencer.ID); err != nil {
			log.Printf("Failed to re-analyze %s: %v", influencer.Name, err)
			ws.mu.Lock()
			ws.failedRuns++
			ws.mu.Unlock()
			continue
		}
		ws.mu.Lock()
		ws.reanalyzed++
		ws.mu.Unlock()
	}

	ws.mu.Lock()
	ws.lastRun = time.Now()
	ws.mu.Unlock()
}

// GetStatus returns the current status of the worker service.
func (ws *WorkerService) GetStatus() map[string]interface{} {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	return map[string]interface{}{
		"running":        ws.running,
		"check_interval": ws.cfg.CheckInterval.String(),
		"max_age":        ws.cfg.MaxAge.String(),
		"last_run":       ws.lastRun,
		"reanalyzed":     ws.reanalyzed,
		"failed_runs":    ws.failedRuns,
	}
}
