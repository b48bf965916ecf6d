package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/youruser/photobooth/internal/composite"
	"github.com/youruser/photobooth/internal/template"
)

// Deps are the collaborators the HTTP layer hands requests to.
type Deps struct {
	Service     *composite.Service
	Templates   *template.Store
	CapturedDir string
	QRBaseURL   string
	QRSize      int
	Gatherer    prometheus.Gatherer
	Log         *zap.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := &handlers{deps: d, log: d.Log}
	if h.log == nil {
		h.log = zap.NewNop()
	}

	r.POST("/composite", h.composite)
	r.POST("/upload-browser-photo", h.uploadBrowserPhoto)
	r.StaticFS("/captured", capturedFS{http.Dir(d.CapturedDir)})

	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/templates", h.listTemplates)
		api.GET("/qr", h.qr)
	}

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
}
