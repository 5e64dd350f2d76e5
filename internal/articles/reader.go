package articles

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"akili/pkg/models"
)

const defaultFeedLimit = 10

// ReaderHandler is the public, read-only side of the article store.
type ReaderHandler struct {
	Repo *Repo
	Log  *zap.Logger
}

func NewReaderHandler(repo *Repo, logger *zap.Logger) *ReaderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReaderHandler{Repo: repo, Log: logger}
}

// RegisterRoutes mounts the article feed under rg (normally /api/articles).
func (h *ReaderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/popular", h.popular)
	rg.GET("/latest", h.latest)
	rg.GET("/:id", h.get)
}

// RegisterSearch mounts GET /search on rg.
func (h *ReaderHandler) RegisterSearch(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
}

func (h *ReaderHandler) list(c *gin.Context) {
	q := ListQuery{
		Status:   models.StatusPublished,
		Category: c.Query("category"),
		Featured: parseBool(c.Query("featured")),
		OrderBy:  c.DefaultQuery("orderBy", OrderPublishDate),
		Limit:    parseInt(c.Query("limit"), DefaultListLimit),
		Offset:   parseInt(c.Query("offset"), 0),
	}
	h.respondList(c, q)
}

func (h *ReaderHandler) popular(c *gin.Context) {
	h.respondList(c, ListQuery{
		Status:  models.StatusPublished,
		OrderBy: OrderViewCount,
		Limit:   parseInt(c.Query("limit"), defaultFeedLimit),
	})
}

func (h *ReaderHandler) latest(c *gin.Context) {
	h.respondList(c, ListQuery{
		Status:  models.StatusPublished,
		OrderBy: OrderPublishDate,
		Limit:   parseInt(c.Query("limit"), defaultFeedLimit),
	})
}

func (h *ReaderHandler) respondList(c *gin.Context, q ListQuery) {
	if q.Limit < 0 {
		q.Limit = defaultFeedLimit
	}
	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		h.Log.Error("list published articles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// get returns the article as read, then bumps its view count. Every call
// counts; there is no per-visitor guard.
func (h *ReaderHandler) get(c *gin.Context) {
	id := c.Param("id")
	a, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Log.Error("get article", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if a == nil || a.Status != models.StatusPublished {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := h.Repo.IncrementViewCount(c.Request.Context(), id); err != nil {
		h.Log.Warn("increment view count", zap.String("id", id), zap.Error(err))
	}
	c.JSON(http.StatusOK, a)
}

func (h *ReaderHandler) search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}

	items, err := h.Repo.Search(c.Request.Context(), term, c.Query("category"))
	if err != nil {
		h.Log.Error("search articles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}
