package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studiofoks/siteops/internal/storage"
)

type Handler struct {
	store       storage.Store
	defaultSite string
}

func NewHandler(store storage.Store, defaultSite string) *Handler {
	return &Handler{store: store, defaultSite: defaultSite}
}

func (h *Handler) site(c *gin.Context) string {
	if site := c.Query("site"); site != "" {
		return site
	}
	return h.defaultSite
}

func limitParam(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

func (h *Handler) LatestSnapshot(c *gin.Context) {
	site := h.site(c)
	if site == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site query parameter is required"})
		return
	}

	snapshot, err := h.store.LatestSnapshot(c.Request.Context(), site)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch snapshot"})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot recorded for site"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) ListSnapshots(c *gin.Context) {
	site := h.site(c)
	if site == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site query parameter is required"})
		return
	}

	snapshots, err := h.store.ListSnapshots(c.Request.Context(), site, limitParam(c, 20))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch snapshots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"site":      site,
		"snapshots": snapshots,
	})
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	records, err := h.store.ListSubmissions(c.Request.Context(), limitParam(c, 50))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": records})
}
