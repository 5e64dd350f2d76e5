package ingest

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"akili/internal/auth"
	"akili/pkg/models"
)

const (
	syncTokenHeader = "X-Sync-Token"
	maxSyncBody     = 1 << 20
)

type Handler struct {
	Service *Service
	// SyncToken, when set, must be sent in X-Sync-Token to trigger a sync.
	SyncToken string
}

func NewHandler(svc *Service, syncToken string) *Handler {
	return &Handler{Service: svc, SyncToken: syncToken}
}

// RegisterRoutes mounts /sync-news on rg (normally /api).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sync-news", h.status)
	rg.POST("/sync-news", h.sync)
}

// RegisterAdminRoutes mounts POST /sync-news behind auth.AuthMiddleware. The
// sync token is not checked there; the session's sync_news permission is.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync-news", auth.RequirePermission(models.PermSyncNews), h.run)
}

// status is a no-op so page loads that probe the route never fail.
func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) sync(c *gin.Context) {
	if h.SyncToken != "" {
		got := c.GetHeader(syncTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.SyncToken)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid sync token"})
			return
		}
	}
	h.run(c)
}

func (h *Handler) run(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSyncBody)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	// an empty or malformed body means "use the defaults"
	var p Params
	if len(body) > 0 {
		if err := json.Unmarshal(body, &p); err != nil {
			p = Params{}
		}
	}

	res, err := h.Service.Run(c.Request.Context(), p)
	if err != nil {
		h.Service.Log.Error("news sync failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
