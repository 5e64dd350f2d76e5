package articles

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"akili/internal/auth"
	"akili/internal/events"
	"akili/pkg/models"
)

// Handler serves the dashboard article endpoints. It must be mounted behind
// auth.AuthMiddleware.
type Handler struct {
	Repo   *Repo
	Events events.Publisher
	Log    *zap.Logger
	Now    func() time.Time
}

func NewHandler(repo *Repo, pub events.Publisher, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = events.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Repo: repo, Events: pub, Log: logger, Now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	read := auth.RequirePermission(models.PermReadArticles)
	edit := auth.RequirePermission(models.PermEditArticles)
	del := auth.RequirePermission(models.PermDeleteArticles)

	rg.GET("", read, h.list)
	rg.GET("/:id", read, h.get)
	rg.POST("", auth.RequirePermission(models.PermCreateArticles), h.create)
	rg.PATCH("/:id", edit, h.patch)
	rg.DELETE("/:id", del, h.delete)
	rg.POST("/bulk-update", edit, h.bulkUpdate)
	rg.POST("/bulk-delete", del, h.bulkDelete)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		AuthorID: c.Query("authorId"),
		Featured: parseBool(c.Query("featured")),
		OrderBy:  c.DefaultQuery("orderBy", OrderCreatedAt),
		Limit:    parseInt(c.Query("limit"), DefaultListLimit),
		Offset:   parseInt(c.Query("offset"), 0),
	}
	// clients can't ask for an unbounded page
	if q.Limit < 0 {
		q.Limit = DefaultListLimit
	}
	q = q.Paged()

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		h.Log.Error("count articles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		h.Log.Error("list articles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Log.Error("get article", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) create(c *gin.Context) {
	var d Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if d.Status == "" {
		d.Status = models.StatusDraft
	}
	if err := d.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := auth.MustGetSession(c)
	a := d.Build(s.User, h.Now())
	if err := h.Repo.Create(c.Request.Context(), &a); err != nil {
		h.Log.Error("create article", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	h.Events.Publish(events.Event{Type: events.ArticleCreated, IDs: []string{a.ID}, By: s.User.ID})
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) patch(c *gin.Context) {
	var p ArticlePatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	a, err := h.Repo.Update(c.Request.Context(), id, p)
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	case IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.Log.Error("update article", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	h.Events.Publish(events.Event{Type: events.ArticleUpdated, IDs: []string{id}, By: auth.MustGetSession(c).User.ID})
	c.JSON(http.StatusOK, a)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.Log.Error("delete article", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.Events.Publish(events.Event{Type: events.ArticleDeleted, IDs: []string{id}, By: auth.MustGetSession(c).User.ID})
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

type bulkUpdateReq struct {
	IDs   []string  `json:"ids"`
	Patch BulkPatch `json:"patch"`
}

func (h *Handler) bulkUpdate(c *gin.Context) {
	var req bulkUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ids := cleanIDs(req.IDs)
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids required"})
		return
	}
	if err := req.Patch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Repo.BulkUpdate(c.Request.Context(), ids, req.Patch)
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.Log.Error("bulk update", zap.Int("count", len(ids)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk update failed"})
		return
	}

	items, err := h.Repo.ListByIDs(c.Request.Context(), ids)
	if err != nil {
		h.Log.Error("reload bulk update", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}

	h.Events.Publish(events.Event{Type: events.ArticlesBulkUpdated, IDs: ids, By: auth.MustGetSession(c).User.ID, Data: req.Patch})
	c.JSON(http.StatusOK, gin.H{"updated": len(ids), "items": items})
}

type bulkDeleteReq struct {
	IDs []string `json:"ids"`
}

func (h *Handler) bulkDelete(c *gin.Context) {
	var req bulkDeleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ids := cleanIDs(req.IDs)
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids required"})
		return
	}

	deleted, err := h.Repo.DeleteMany(c.Request.Context(), ids)
	if len(deleted) > 0 {
		h.Events.Publish(events.Event{Type: events.ArticlesBulkDeleted, IDs: deleted, By: auth.MustGetSession(c).User.ID})
	}
	if err != nil {
		h.Log.Error("bulk delete", zap.Int("deleted", len(deleted)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bulk delete failed", "deleted": deleted})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// cleanIDs trims ids and drops blanks and repeats, keeping order.
func cleanIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseBool(s string) *bool {
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}
