package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"marketplace-portal/internal/cleanup"
	"marketplace-portal/internal/database"
	"marketplace-portal/internal/models"
	"marketplace-portal/internal/notifier"
	"marketplace-portal/internal/scheduler"
)

// AdminHandler handles moderation and operations endpoints
type AdminHandler struct {
	db             *gorm.DB
	deps           ListingDeps
	conversations  database.ConversationStore
	scheduler      *scheduler.Scheduler
	cleanupService *cleanup.Service
	worker         *notifier.Worker
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, deps ListingDeps, conversations database.ConversationStore, sched *scheduler.Scheduler, cleanupSvc *cleanup.Service, worker *notifier.Worker) *AdminHandler {
	return &AdminHandler{
		db:             db,
		deps:           deps,
		conversations:  conversations,
		scheduler:      sched,
		cleanupService: cleanupSvc,
		worker:         worker,
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})

	// Listing counts by status, per kind
	stats["properties"] = h.countByStatus(&models.Property{})
	stats["vehicles"] = h.countByStatus(&models.Vehicle{})

	// User counts
	var userCount int64
	h.db.Model(&models.User{}).Count(&userCount)
	last24h := time.Now().AddDate(0, 0, -1)
	var activeUsers int64
	h.db.Model(&models.User{}).Where("last_login >= ?", last24h).Count(&activeUsers)
	stats["users"] = map[string]interface{}{
		"total":           userCount,
		"active_last_24h": activeUsers,
	}

	// Messaging activity
	var conversationCount int64
	h.db.Model(&models.Conversation{}).Count(&conversationCount)
	messagesLast24h, err := h.conversations.CountMessagesSince(c.Request.Context(), last24h)
	if err != nil {
		log.Printf("[Admin] failed to count recent messages: %v", err)
	}
	stats["messaging"] = map[string]interface{}{
		"conversations":     conversationCount,
		"messages_last_24h": messagesLast24h,
	}

	// Listing changes (last 7 days)
	last7days := time.Now().AddDate(0, 0, -7)
	var recentChanges int64
	h.db.Model(&models.ListingChange{}).Where("detected_at >= ?", last7days).Count(&recentChanges)
	stats["changes"] = map[string]interface{}{
		"last_7_days": recentChanges,
	}

	// Notification queue
	if h.worker != nil {
		queueStats, err := h.worker.GetQueueStats(c.Request.Context())
		if err != nil {
			log.Printf("[Admin] failed to get queue stats: %v", err)
		} else {
			stats["notification_queue"] = queueStats
		}
	}

	// Delete logs
	deleteStats, err := h.cleanupService.GetDeleteStats()
	if err != nil {
		log.Printf("[Admin] failed to get delete stats: %v", err)
	} else {
		stats["deletions"] = deleteStats
	}

	respondOK(c, http.StatusOK, stats)
}

// countByStatus tallies one listing table by status
func (h *AdminHandler) countByStatus(model interface{}) map[string]int64 {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	h.db.Model(model).
		Where("removed_at IS NULL").
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows)

	out := make(map[string]int64, len(rows))
	var total int64
	for _, r := range rows {
		out[r.Status] = r.Count
		total += r.Count
	}
	out["total"] = total
	return out
}

// GetPriceDistribution returns price histogram buckets per kind
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	type bucket struct {
		Bucket string `json:"bucket"`
		Count  int64  `json:"count"`
	}
	build := func(table string) []bucket {
		var rows []bucket
		h.db.Raw(`SELECT CASE
				WHEN price < 10000 THEN '<10k'
				WHEN price < 50000 THEN '10k-50k'
				WHEN price < 100000 THEN '50k-100k'
				WHEN price < 500000 THEN '100k-500k'
				ELSE '500k+'
			END AS bucket, COUNT(*) AS count
			FROM ` + table + `
			WHERE removed_at IS NULL AND status = 'ACTIVE'
			GROUP BY bucket`).Scan(&rows)
		return rows
	}

	respondOK(c, http.StatusOK, gin.H{
		"properties": build("properties"),
		"vehicles":   build("vehicles"),
	})
}

// GetRecentChanges returns the latest listing change records
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	changes, err := h.deps.History.RecentChanges(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

// GetListingChanges returns the full change history of one listing
func (h *AdminHandler) GetListingChanges(c *gin.Context) {
	ref := models.ListingRef{
		PropertyID: queryUint(c, "property_id"),
		VehicleID:  queryUint(c, "vehicle_id"),
	}
	if err := ref.Validate(); err != nil {
		respondError(c, err)
		return
	}

	changes, err := h.deps.History.ChangesForListing(ref.Kind(), ref.ID())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"kind":    ref.Kind(),
		"id":      ref.ID(),
		"changes": changes,
		"count":   len(changes),
	})
}

func queryUint(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

// GetPendingReview returns draft listings awaiting their first activation
func (h *AdminHandler) GetPendingReview(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var properties []models.Property
	if err := h.db.Where("status = ? AND removed_at IS NULL", models.StatusDraft).
		Order("created_at ASC").Limit(limit).Find(&properties).Error; err != nil {
		respondError(c, err)
		return
	}

	var vehicles []models.Vehicle
	if err := h.db.Where("status = ? AND removed_at IS NULL", models.StatusDraft).
		Order("created_at ASC").Limit(limit).Find(&vehicles).Error; err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"properties": properties,
		"vehicles":   vehicles,
	})
}

type takedownRequest struct {
	PropertyID *uint  `json:"property_id"`
	VehicleID  *uint  `json:"vehicle_id"`
	Reason     string `json:"reason"`
}

// ForceTakedown soft-removes any listing regardless of owner
func (h *AdminHandler) ForceTakedown(c *gin.Context) {
	var req takedownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "property_id or vehicle_id is required")
		return
	}

	ref := models.ListingRef{PropertyID: req.PropertyID, VehicleID: req.VehicleID}
	if err := ref.Validate(); err != nil {
		respondError(c, err)
		return
	}

	listing, err := h.deps.Listings.Resolve(c.Request.Context(), ref)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.deps.Listings.SoftRemove(c.Request.Context(), listing); err != nil {
		respondError(c, err)
		return
	}

	note := req.Reason
	if note == "" {
		note = "moderation takedown"
	}
	if err := h.deps.History.RecordModeration(listing, currentUserID(c), note); err != nil {
		log.Printf("[Admin] history record failed: %v", err)
	}

	if h.deps.Search != nil {
		if err := h.deps.Search.DeleteListing(listing.Kind(), listing.ListingID()); err != nil {
			log.Printf("[Admin] search delete failed: %v", err)
		}
	}

	respondMessage(c, http.StatusOK, gin.H{
		"kind": listing.Kind(),
		"id":   listing.ListingID(),
	}, "Listing taken down")
}

// RunCleanup triggers the retention cleanup, optionally as a dry run
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	dryRun := c.DefaultQuery("dry_run", "false") == "true"

	cfg := cleanup.DefaultCleanupConfig()
	cfg.DryRun = dryRun
	if days, err := strconv.Atoi(c.DefaultQuery("retention_days", "")); err == nil && days > 0 {
		cfg.RetentionDays = days
	}

	result, err := h.cleanupService.PhysicallyDelete(cfg)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, result)
}

// GetCleanupLogs returns recent delete log entries
func (h *AdminHandler) GetCleanupLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.cleanupService.GetRecentDeleteLogs(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// ReindexSearch rebuilds the search index from the active listings
func (h *AdminHandler) ReindexSearch(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Scheduler not available",
		})
		return
	}

	count, err := h.scheduler.Reindex(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, gin.H{
		"indexed": count,
	}, "Reindex completed")
}

// TriggerMaintenance manually runs the daily maintenance job
func (h *AdminHandler) TriggerMaintenance(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Scheduler not available",
		})
		return
	}

	log.Println("[Admin] manual maintenance trigger requested")

	// Run in goroutine to avoid blocking
	go func() {
		if err := h.scheduler.RunNow(); err != nil {
			log.Printf("[Admin] manual maintenance failed: %v", err)
		} else {
			log.Println("[Admin] manual maintenance completed successfully")
		}
	}()

	respondMessage(c, http.StatusAccepted, nil, "Maintenance job started")
}
