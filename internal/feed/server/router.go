// Package server exposes the composed loaders over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/greeddj/go-zzfeed/internal/feed/cache"
	"github.com/greeddj/go-zzfeed/internal/feed/compose"
	"github.com/greeddj/go-zzfeed/internal/feed/model"
	"github.com/greeddj/go-zzfeed/internal/feed/pipeline"
	"github.com/greeddj/go-zzfeed/internal/feed/remote"
)

// Validator evicts an invalid cached feed.
type Validator interface {
	ValidateCache(ctx context.Context) error
}

type handlers struct {
	feed      compose.FeedLoader
	image     compose.ImageDataLoader
	validator Validator
	log       *zap.Logger
}

type feedItem struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Image       string `json:"image"`
}

// NewRouter builds the gin engine serving loaders.
func NewRouter(loaders *compose.Loaders, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{
		feed:      loaders.Feed,
		image:     loaders.Image,
		validator: loaders.Local,
		log:       log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), accessLog(log))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/feed", h.getFeed)
	r.GET("/image", h.getImage)
	r.POST("/cache/validate", h.validate)
	return r
}

func (h *handlers) getFeed(c *gin.Context) {
	feed, err := h.feed.Load(c.Request.Context())
	if err != nil {
		h.log.Warn("feed load failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toItems(feed)})
}

func (h *handlers) getImage(c *gin.Context) {
	u, err := pipeline.ParseImageURL(c.Query("url"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := h.image.LoadImageData(c.Request.Context(), u)
	if err != nil {
		c.JSON(imageErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (h *handlers) validate(c *gin.Context) {
	if err := h.validator.ValidateCache(c.Request.Context()); err != nil {
		h.log.Warn("cache validation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func imageErrorStatus(err error) int {
	var statusErr *remote.HTTPStatusError
	switch {
	case errors.Is(err, cache.ErrImageNotFound):
		return http.StatusNotFound
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func toItems(feed []model.FeedImage) []feedItem {
	items := make([]feedItem, 0, len(feed))
	for _, image := range feed {
		item := feedItem{
			ID:          image.ID.String(),
			Description: image.Description,
			Location:    image.Location,
		}
		if image.URL != nil {
			item.Image = image.URL.String()
		}
		items = append(items, item)
	}
	return items
}

func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
