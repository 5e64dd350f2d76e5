package media

import (
	"errors"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"akili/internal/auth"
	"akili/internal/events"
	"akili/pkg/models"
)

type Handler struct {
	Repo     *Repo
	Store    *DiskStore
	MaxBytes int64
	Events   events.Publisher
	Log      *zap.Logger
}

func NewHandler(repo *Repo, store *DiskStore, maxBytes int64, pub events.Publisher, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = events.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Repo: repo, Store: store, MaxBytes: maxBytes, Events: pub, Log: logger}
}

// RegisterRoutes mounts the library endpoints behind auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	manage := auth.RequirePermission(models.PermManageMedia)

	rg.GET("", h.list)
	rg.POST("", manage, h.upload)
	rg.DELETE("/:id", manage, h.delete)
}

// RegisterStatic serves stored files read-only at the store's base URL.
func RegisterStatic(r *gin.Engine, store *DiskStore) {
	r.Static(store.BaseURL, store.Dir)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context(), c.Query("folder"))
	if err != nil {
		h.Log.Error("list media", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer f.Close()

	rel, url, size, err := h.Store.Save(c.PostForm("folder"), fh.Filename, f)
	if err != nil {
		if errors.Is(err, ErrBadName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.Log.Error("store upload", zap.String("name", fh.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	m := models.MediaFile{
		ID:          uuid.NewString(),
		Name:        fh.Filename,
		Folder:      path.Dir(rel),
		StoredPath:  rel,
		URL:         url,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        size,
		UploadedBy:  auth.MustGetSession(c).User.ID,
		UploadedAt:  time.Now().UTC(),
	}
	if err := h.Repo.Create(c.Request.Context(), &m); err != nil {
		_ = h.Store.Remove(rel)
		h.Log.Error("record upload", zap.String("path", rel), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	h.Events.Publish(events.Event{Type: events.MediaUploaded, IDs: []string{m.ID}, By: m.UploadedBy})
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	m, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Log.Error("get media", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := h.Store.Remove(m.StoredPath); err != nil {
		h.Log.Error("remove media file", zap.String("path", m.StoredPath), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if _, err := h.Repo.Delete(c.Request.Context(), id); err != nil {
		h.Log.Error("delete media row", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	h.Events.Publish(events.Event{Type: events.MediaDeleted, IDs: []string{id}, By: auth.MustGetSession(c).User.ID})
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}
