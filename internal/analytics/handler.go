package analytics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"akili/internal/auth"
	"akili/pkg/models"
)

const (
	dateLayout = "2006-01-02"
	topN       = 5
)

// ArticleStats supplies the per-article view ranking.
type ArticleStats interface {
	TopByViews(ctx context.Context, limit int) ([]models.ArticleViews, error)
	ViewsByCategory(ctx context.Context, limit int) ([]models.CategoryViews, error)
}

type Handler struct {
	Repo     *Repo
	Articles ArticleStats
	Log      *zap.Logger
}

func NewHandler(repo *Repo, articles ArticleStats, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Repo: repo, Articles: articles, Log: logger}
}

// RegisterReaderRoutes mounts POST /analytics/pageview.
func (h *Handler) RegisterReaderRoutes(rg *gin.RouterGroup) {
	rg.POST("/analytics/pageview", h.track)
}

// RegisterRoutes mounts the dashboard summary behind auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics", auth.RequirePermission(models.PermViewAnalytics), h.summary)
}

type pageViewReq struct {
	URL      string `json:"url"`
	Referrer string `json:"referrer"`
}

// track never reports failure to the reader; tracking is best effort.
func (h *Handler) track(c *gin.Context) {
	var req pageViewReq
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.URL) == "" {
		c.Status(http.StatusNoContent)
		return
	}

	v := models.PageView{
		URL:       req.URL,
		UserAgent: c.Request.UserAgent(),
		Referrer:  req.Referrer,
	}
	if v.Referrer == "" {
		v.Referrer = c.Request.Referer()
	}
	if err := h.Repo.Track(c.Request.Context(), v); err != nil {
		h.Log.Warn("track page view", zap.String("url", v.URL), zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) summary(c *gin.Context) {
	rg, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
		return
	}

	ctx := c.Request.Context()
	out := models.AnalyticsSummary{Date: time.Now().UTC().Format(dateLayout)}

	out.PageViews, out.UniqueVisitors, err = h.Repo.Traffic(ctx, rg)
	if err != nil {
		h.Log.Error("analytics traffic", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics failed"})
		return
	}
	if out.TopArticles, err = h.Articles.TopByViews(ctx, topN); err != nil {
		h.Log.Error("analytics top articles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics failed"})
		return
	}
	if out.TopCategories, err = h.Articles.ViewsByCategory(ctx, topN); err != nil {
		h.Log.Error("analytics top categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics failed"})
		return
	}

	c.JSON(http.StatusOK, out)
}

// parseRange reads inclusive YYYY-MM-DD bounds; "to" covers its whole day.
func parseRange(from, to string) (Range, error) {
	var rg Range
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return Range{}, err
		}
		rg.From = t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return Range{}, err
		}
		rg.To = t.AddDate(0, 0, 1)
	}
	return rg, nil
}
