// internal/interfaces/http/handlers/sync.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cart-engine/internal/domain/cart"
	"github.com/your-org/cart-engine/internal/domain/offline"
	"github.com/your-org/cart-engine/internal/interfaces/http/middleware"
	"github.com/your-org/cart-engine/internal/pkg/syncerr"
)

// SyncHandler exposes the offline sync machinery: queue status,
// connectivity control and manual drain
type SyncHandler struct {
	registry     *cart.Registry
	manager      *offline.Manager
	connectivity *offline.Connectivity
	recorder     *syncerr.Recorder
	logger       *logrus.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(registry *cart.Registry, manager *offline.Manager, connectivity *offline.Connectivity, recorder *syncerr.Recorder, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		registry:     registry,
		manager:      manager,
		connectivity: connectivity,
		recorder:     recorder,
		logger:       logger,
	}
}

// ConnectivityRequest represents a connectivity state change
type ConnectivityRequest struct {
	Online *bool `json:"online" binding:"required"`
}

// GetStatus handles GET /sync/status
func (h *SyncHandler) GetStatus(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	snap := engine.CurrentSnapshot()

	c.JSON(http.StatusOK, gin.H{
		"message": "Sync status retrieved successfully",
		"data": gin.H{
			"online":            h.connectivity.Online(),
			"offline_changes":   snap.OfflineChanges,
			"pending_mutations": engine.Queue().Len(),
			"last_sync_attempt": snap.LastSyncAttempt,
			"errors":            h.recorder.Snapshot(),
		},
	})
}

// SetConnectivity handles POST /sync/connectivity. The false→true
// transition kicks off an automatic drain pass in the background.
func (h *SyncHandler) SetConnectivity(c *gin.Context) {
	var req ConnectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Online == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	h.connectivity.Set(*req.Online)

	c.JSON(http.StatusOK, gin.H{
		"message": "Connectivity updated",
		"data": gin.H{
			"online": h.connectivity.Online(),
		},
	})
}

// Drain handles POST /sync/drain - replays this session's queued
// offline mutations immediately
func (h *SyncHandler) Drain(c *gin.Context) {
	if !h.connectivity.Online() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cannot sync while offline",
		})
		return
	}

	engine, ok := h.engine(c)
	if !ok {
		return
	}

	report := h.manager.Drain(c.Request.Context(), engine)

	c.JSON(http.StatusOK, gin.H{
		"message": "Sync pass completed",
		"data": gin.H{
			"report": report,
			"cart":   engine.CurrentSnapshot(),
		},
	})
}

func (h *SyncHandler) engine(c *gin.Context) (*cart.Engine, bool) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart session required",
		})
		return nil, false
	}

	engine, err := h.registry.Get(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to access cart",
		})
		return nil, false
	}
	return engine, true
}
