package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"health-claims/internal/analysis"
	"health-claims/internal/auth"
	"health-claims/internal/cache"
	"health-claims/internal/catalog"
	"health-claims/internal/models"
	"health-claims/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InfluencersHandler handles HTTP requests for the influencer engine
type InfluencersHandler struct {
	service *services.InfluencersService
	cache   *cache.Cache
	tokens  *auth.TokenService
}

// NewInfluencersHandler creates a new influencers handler. The cache
// may be nil (caching disabled).
func NewInfluencersHandler(service *services.InfluencersService, c *cache.Cache, tokens *auth.TokenService) *InfluencersHandler {
	return &InfluencersHandler{service: service, cache: c, tokens: tokens}
}

// RequireToken guards mutating routes. With no token service
// configured the guard is a no-op (development mode).
func (h *InfluencersHandler) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.tokens == nil {
			c.Next()
			return
		}
		subject, ok := h.tokens.ValidateToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Valid service token required"})
			return
		}
		c.Set("token_subject", subject)
		c.Next()
	}
}

// respondError maps service errors to stable HTTP error payloads
// without leaking provider internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Influencer not found"})
	case errors.Is(err, services.ErrEmptyComparison):
		c.JSON(http.StatusNotFound, gin.H{"error": "No influencers found to compare"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConcurrentAnalysis):
		c.JSON(http.StatusConflict, gin.H{"error": "Analysis superseded by a concurrent run"})
	default:
		var discoveryErr *analysis.DiscoveryError
		if errors.As(err, &discoveryErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Content discovery failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid influencer ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /influencers
func (h *InfluencersHandler) Create(c *gin.Context) {
	var influencer models.Influencer
	if err := c.ShouldBindJSON(&influencer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid influencer payload"})
		return
	}

	if err := h.service.Create(&influencer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, influencer)
}

// List handles GET /influencers
func (h *InfluencersHandler) List(c *gin.Context) {
	influencers, err := h.service.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, influencers)
}

// Get handles GET /influencers/:id
func (h *InfluencersHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	influencer, err := h.service.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, influencer)
}

// Update handles PUT /influencers/:id
func (h *InfluencersHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input services.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid influencer payload"})
		return
	}

	influencer, err := h.service.Update(id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, influencer)
}

// Delete handles DELETE /influencers/:id
func (h *InfluencersHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Analyze handles POST /influencers/:id/analyze
func (h *InfluencersHandler) Analyze(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	influencer, err := h.service.Analyze(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, influencer)
}

// Analysis handles GET /influencers/:id/analysis
func (h *InfluencersHandler) Analysis(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.service.Analysis(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Search handles GET /influencers/search
func (h *InfluencersHandler) Search(c *gin.Context) {
	filters := services.SearchFilters{
		Query:     c.Query("query"),
		Specialty: c.Query("specialty"),
		SortBy:    c.Query("sortBy"),
		Order:     c.DefaultQuery("order", "desc"),
	}
	if v, err := strconv.Atoi(c.Query("minTrustScore")); err == nil {
		filters.MinTrustScore = &v
	}
	if v, err := strconv.Atoi(c.Query("minFollowers")); err == nil {
		filters.MinFollowers = &v
	}

	results, err := h.service.Search(filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Leaderboard handles GET /influencers/leaderboard
func (h *InfluencersHandler) Leaderboard(c *gin.Context) {
	category := c.Query("category")
	metric := c.DefaultQuery("metric", services.MetricTrustScore)
	key := "leaderboard:" + category + ":" + metric

	var cached []services.LeaderboardEntry
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	entries, err := h.service.Leaderboard(category, metric)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cache.SetJSON(c.Request.Context(), key, entries)
	c.JSON(http.StatusOK, entries)
}

type compareRequest struct {
	IDs []string `json:"ids"`
}

// Compare handles POST /influencers/compare
func (h *InfluencersHandler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comparison payload"})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid influencer ID format"})
			return
		}
		ids = append(ids, id)
	}

	result, err := h.service.Compare(ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Timeline handles GET /influencers/:id/timeline
func (h *InfluencersHandler) Timeline(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	opts := services.TimelineOptions{Category: c.Query("category")}
	if raw := c.Query("startDate"); raw != "" {
		start, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate"})
			return
		}
		opts.StartDate = &start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate"})
			return
		}
		opts.EndDate = &end
	}

	timeline, err := h.service.Timeline(id, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, timeline)
}

// ClaimsByCategory handles GET /influencers/:id/claims/categories
func (h *InfluencersHandler) ClaimsByCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	groups, err := h.service.ClaimsByCategory(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// SocialMetrics handles GET /influencers/:id/social-metrics
func (h *InfluencersHandler) SocialMetrics(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	timeframe, _ := strconv.Atoi(c.DefaultQuery("timeframe", "30"))
	view, err := h.service.SocialMetrics(id, timeframe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Trending handles GET /influencers/claims/trending
func (h *InfluencersHandler) Trending(c *gin.Context) {
	category := c.Query("category")
	timeframe := 0
	if raw := c.Query("timeframe"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timeframe"})
			return
		}
		timeframe = v
	}

	key := "trending:" + category + ":" + strconv.Itoa(timeframe)
	var cached []models.Claim
	if h.cache.GetJSON(c.Request.Context(), key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	claims, err := h.service.Trending(category, timeframe)
	if err != nil {
		respondError(c, err)
		return
	}

	h.cache.SetJSON(c.Request.Context(), key, claims)
	c.JSON(http.StatusOK, claims)
}

// CategoryStats handles GET /influencers/stats/categories
func (h *InfluencersHandler) CategoryStats(c *gin.Context) {
	stats, err := h.service.GlobalCategoryStats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Sources handles GET /influencers/utils/sources
func (h *InfluencersHandler) Sources(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Sources())
}

// Platforms handles GET /influencers/utils/platforms
func (h *InfluencersHandler) Platforms(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Platforms())
}

// Categories handles GET /influencers/utils/categories
func (h *InfluencersHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Categories())
}

// HealthCheck handles GET /health
func (h *InfluencersHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "health-claims",
	})
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
