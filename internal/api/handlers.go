package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/photobooth/internal/apperror"
	"github.com/youruser/photobooth/internal/composite"
	imagepkg "github.com/youruser/photobooth/internal/image"
)

const (
	msgCompositeFailed = "Failed to generate composite"
	msgUploadFailed    = "Failed to process uploaded image"
)

type handlers struct {
	deps Deps
	log  *zap.Logger
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type compositeBody struct {
	Template string   `json:"template"`
	Photos   []string `json:"photos"`
}

func (h *handlers) composite(c *gin.Context) {
	var body compositeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, apperror.Wrap(apperror.CodeBadRequest, err, "Missing template or photo list"), msgCompositeFailed)
		return
	}
	photos := make([]imagepkg.Source, len(body.Photos))
	for i, name := range body.Photos {
		photos[i] = imagepkg.FileSource(name)
	}

	res, err := h.deps.Service.Composite(c.Request.Context(), composite.Request{TemplateID: body.Template, Photos: photos})
	if err != nil {
		h.fail(c, err, msgCompositeFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": res.Path})
}

type uploadBody struct {
	ImageData string `json:"imageData"`
	Template  string `json:"template"`
}

func (h *handlers) uploadBrowserPhoto(c *gin.Context) {
	var body uploadBody
	if err := c.ShouldBindJSON(&body); err != nil || body.ImageData == "" {
		h.fail(c, apperror.Wrap(apperror.CodeInvalidPayload, err, "Missing or invalid imageData"), msgUploadFailed)
		return
	}

	res, err := h.deps.Service.CompositeUpload(c.Request.Context(), composite.UploadRequest{
		TemplateID: body.Template,
		ImageData:  body.ImageData,
	})
	if err != nil {
		h.fail(c, err, msgUploadFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": res.Path})
}

type templateInfo struct {
	ID     string `json:"id"`
	Counts []int  `json:"counts"`
}

// listTemplates reports every loadable template with the photo counts it
// supports. Broken templates are logged and left out.
func (h *handlers) listTemplates(c *gin.Context) {
	names, err := h.deps.Templates.List()
	if err != nil {
		h.log.Error("listing templates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list templates"})
		return
	}
	out := make([]templateInfo, 0, len(names))
	for _, name := range names {
		tpl, err := h.deps.Templates.Load(name)
		if err != nil {
			h.log.Warn("skipping template", zap.String("template", name), zap.Error(err))
			continue
		}
		out = append(out, templateInfo{ID: tpl.ID, Counts: tpl.Counts()})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}

// qr returns a PNG QR code pointing at a captured file, for guests to
// download their composite. ?path=/captured/<name>, optional ?size=.
func (h *handlers) qr(c *gin.Context) {
	p := c.Query("path")
	if !strings.HasPrefix(p, "/captured/") || strings.Contains(p, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path must point into /captured/"})
		return
	}
	size := h.deps.QRSize
	if s := c.Query("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be an integer"})
			return
		}
		size = v
	}

	target, err := url.JoinPath(h.deps.QRBaseURL, p)
	if err != nil {
		h.log.Error("building qr target", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	b, err := imagepkg.GenerateQRPNG(target, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// fail writes err as {"error", "code"}. Client errors keep their own
// message; everything else is reported with the generic one.
func (h *handlers) fail(c *gin.Context, err error, generic string) {
	code := apperror.CodeOf(err)
	status := apperror.HTTPStatus(code)
	msg := generic
	if status == http.StatusBadRequest {
		msg = apperror.MessageOf(err)
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("route", c.FullPath()), zap.String("code", string(code)), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg, "code": code})
}
