package categories

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"akili/internal/auth"
	"akili/internal/events"
	"akili/pkg/models"
)

type Handler struct {
	Repo   *Repo
	Events events.Publisher
	Log    *zap.Logger
}

func NewHandler(repo *Repo, pub events.Publisher, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = events.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Repo: repo, Events: pub, Log: logger}
}

// RegisterReaderRoutes mounts the public category list (active only).
func (h *Handler) RegisterReaderRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.listActive)
}

// RegisterRoutes mounts the dashboard endpoints behind auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	manage := auth.RequirePermission(models.PermManageCategories)

	rg.GET("", h.listAll)
	rg.POST("", manage, h.create)
	rg.PUT("/reorder", manage, h.reorder)
	rg.PATCH("/:id", manage, h.patch)
	rg.DELETE("/:id", manage, h.delete)
}

func (h *Handler) listActive(c *gin.Context) {
	h.respondList(c, true)
}

func (h *Handler) listAll(c *gin.Context) {
	h.respondList(c, false)
}

func (h *Handler) respondList(c *gin.Context, activeOnly bool) {
	items, err := h.Repo.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.Log.Error("list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type createReq struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Color         string   `json:"color"`
	Order         int      `json:"order"`
	Subcategories []string `json:"subcategories"`
	Slug          string   `json:"slug"`
	IsActive      *bool    `json:"isActive"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cat := models.Category{
		Name:          req.Name,
		Description:   req.Description,
		Color:         req.Color,
		Order:         req.Order,
		Subcategories: req.Subcategories,
		Slug:          Slugify(req.Slug),
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	err := h.Repo.Create(c.Request.Context(), &cat)
	switch {
	case errors.Is(err, ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.Log.Error("create category", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	h.Events.Publish(events.Event{Type: events.CategoryCreated, IDs: []string{cat.ID}, By: auth.MustGetSession(c).User.ID})
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) patch(c *gin.Context) {
	var p Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	id := c.Param("id")
	cat, err := h.Repo.Update(c.Request.Context(), id, p)
	switch {
	case errors.Is(err, ErrEmptyPatch), errors.Is(err, ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	case err != nil:
		h.Log.Error("update category", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	h.Events.Publish(events.Event{Type: events.CategoryUpdated, IDs: []string{id}, By: auth.MustGetSession(c).User.ID})
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.Log.Error("delete category", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.Events.Publish(events.Event{Type: events.CategoryDeleted, IDs: []string{id}, By: auth.MustGetSession(c).User.ID})
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

type reorderReq struct {
	IDs []string `json:"ids"`
}

func (h *Handler) reorder(c *gin.Context) {
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	err := h.Repo.Reorder(c.Request.Context(), req.IDs)
	switch {
	case errors.Is(err, ErrEmptyReorder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.Log.Error("reorder categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reorder failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), false)
	if err != nil {
		h.Log.Error("reload categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}

	h.Events.Publish(events.Event{Type: events.CategoriesReordered, IDs: req.IDs, By: auth.MustGetSession(c).User.ID})
	c.JSON(http.StatusOK, gin.H{"items": items})
}
