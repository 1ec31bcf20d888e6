package worker

import (
	"context"
	"os"
	"testing"
	"time"

	"health-claims/internal/analysis"
	"health-claims/internal/database"
	"health-claims/internal/models"
	"health-claims/internal/services"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Set test environment variables
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("DB_PORT", "5432")
	os.Setenv("DB_USER", "postgres")
	os.Setenv("DB_PASSWORD", "")
	os.Setenv("DB_NAME", "health_claims_test")
	os.Setenv("DB_SSLMODE", "disable")

	config := database.LoadConfig()

	err := database.Connect(config)
	if err != nil {
		t.Skipf("Skipping test - PostgreSQL test database not available: %v", err)
	}

	db := database.DB

	err = db.AutoMigrate(
		&models.Influencer{},
		&models.Claim{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	db.Exec("DELETE FROM claims")
	db.Exec("DELETE FROM influencers")

	return db
}

// slowDiscovery holds each discovery call for delay (or until the run
// is cancelled), keeping a pass in flight long enough to race against.
type slowDiscovery struct {
	delay time.Duration
}

func (d *slowDiscovery) Discover(ctx context.Context, name string) ([]analysis.RawClaim, error) {
	select {
	case <-time.After(d.delay):
	case <-ctx.Done():
	}
	return []analysis.RawClaim{{Statement: "claim", Source: "Podcast", Date: time.Now()}}, nil
}

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, statement string) (*analysis.Verdict, error) {
	return &analysis.Verdict{Status: "Verified", Category: "Nutrition", Confidence: 80}, nil
}

func newTestWorker(t *testing.T, discoveryDelay time.Duration, cfg Config) (*WorkerService, *services.InfluencersService) {
	db := setupTestDB(t)
	pipeline := analysis.NewPipeline(&slowDiscovery{delay: discoveryDelay}, stubVerifier{}, analysis.DefaultConfig())
	influencers := services.NewInfluencersService(db, pipeline)
	return NewWorkerService(db, influencers, cfg), influencers
}

func TestWorkerService_StopDuringActivePass(t *testing.T) {
	ws, influencers := newTestWorker(t, 2*time.Second, Config{
		CheckInterval: 10 * time.Millisecond,
		MaxAge:        time.Hour,
		BatchSize:     1,
	})

	// A never-analyzed influencer is immediately stale.
	assert.NoError(t, influencers.Create(&models.Influencer{Name: "Dr. Example"}))

	assert.NoError(t, ws.Start())

	// Let the pass get in flight inside the slow discovery call.
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		ws.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return while a re-analysis pass was in flight")
	}
	assert.False(t, ws.IsRunning())
}

func TestWorkerService_RunsInitialPassOnStart(t *testing.T) {
	// With an hour-long interval, only the startup pass can pick the
	// stale record up within the test window.
	ws, influencers := newTestWorker(t, 0, Config{
		CheckInterval: time.Hour,
		MaxAge:        time.Hour,
		BatchSize:     5,
	})

	influencer := &models.Influencer{Name: "Dr. Example"}
	assert.NoError(t, influencers.Create(influencer))

	assert.NoError(t, ws.Start())
	defer ws.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if ws.GetStatus()["reanalyzed"].(int) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	reloaded, err := influencers.Get(influencer.ID)
	assert.NoError(t, err)
	assert.NotNil(t, reloaded.AnalysisMetrics.LastAnalysis)
	assert.Len(t, reloaded.Claims, 1)
}
