// Package composite runs a composite request end to end: template lookup,
// layout selection, photo decoding, drawing and persisting the result.
package composite

import (
	"context"
	"image"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/youruser/photobooth/internal/apperror"
	imagepkg "github.com/youruser/photobooth/internal/image"
	"github.com/youruser/photobooth/internal/metrics"
	"github.com/youruser/photobooth/internal/output"
	"github.com/youruser/photobooth/internal/template"
)

// Request asks for Photos to be placed onto template TemplateID.
type Request struct {
	TemplateID string
	Photos     []imagepkg.Source
}

// UploadRequest carries a single browser-captured frame.
type UploadRequest struct {
	TemplateID string
	ImageData  string
}

type Result = output.Result

type Templates interface {
	Load(id string) (*template.Template, error)
}

type Loader interface {
	Load(ctx context.Context, src imagepkg.Source) (image.Image, error)
}

type Writer interface {
	Write(ctx context.Context, canvas image.Image) (output.Result, error)
	WritePhoto(ctx context.Context, img image.Image) (output.Result, error)
	Remove(res output.Result) error
}

type Options struct {
	// DefaultTemplate is used by CompositeUpload when the request names none.
	DefaultTemplate string
}

type Service struct {
	templates Templates
	loader    Loader
	writer    Writer
	metrics   *metrics.Metrics
	log       *zap.Logger
	opts      Options
}

func NewService(templates Templates, loader Loader, writer Writer, m *metrics.Metrics, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{templates: templates, loader: loader, writer: writer, metrics: m, log: log, opts: opts}
}

// Composite places req.Photos into the template layout declared for
// len(req.Photos) and writes the result. The template and layout are
// checked before any photo is decoded. Any failure discards the request.
func (s *Service) Composite(ctx context.Context, req Request) (res Result, err error) {
	start := time.Now()
	defer func() { s.observe(req.TemplateID, start, err) }()

	tpl, slots, err := s.resolve(req.TemplateID, len(req.Photos))
	if err != nil {
		return Result{}, err
	}
	return s.render(ctx, tpl, slots, req.Photos, start)
}

// CompositeUpload decodes a base64 browser frame and composites it as a
// single photo. The frame is saved next to the composite as a JPEG only
// once the template accepts one photo, and removed again if the composite
// cannot be written.
func (s *Service) CompositeUpload(ctx context.Context, req UploadRequest) (res Result, err error) {
	start := time.Now()
	id := req.TemplateID
	if id == "" {
		id = s.opts.DefaultTemplate
	}
	defer func() { s.observe(id, start, err) }()

	raw, err := imagepkg.DecodeUpload(req.ImageData)
	if err != nil {
		return Result{}, err
	}
	img, err := s.loader.Load(ctx, imagepkg.BytesSource(raw))
	if err != nil {
		return Result{}, err
	}
	tpl, slots, err := s.resolve(id, 1)
	if err != nil {
		return Result{}, err
	}

	photo, err := s.writer.WritePhoto(ctx, img)
	if err != nil {
		return Result{}, err
	}
	res, err = s.render(ctx, tpl, slots, []imagepkg.Source{imagepkg.DecodedSource(img)}, start)
	if err != nil {
		if rmErr := s.writer.Remove(photo); rmErr != nil {
			s.log.Warn("removing upload after failed composite", zap.String("path", photo.Path), zap.Error(rmErr))
		}
		return Result{}, err
	}
	if s.metrics != nil {
		s.metrics.UploadsTotal.Inc()
	}
	s.log.Debug("upload stored", zap.String("path", photo.Path), zap.Int("bytes", len(raw)))
	return res, nil
}

// resolve loads the template and picks the layout for count photos.
func (s *Service) resolve(templateID string, count int) (*template.Template, []template.Slot, error) {
	if templateID == "" || count == 0 {
		return nil, nil, apperror.New(apperror.CodeBadRequest, "Missing template or photo list")
	}
	tpl, err := s.templates.Load(templateID)
	if err != nil {
		return nil, nil, err
	}
	slots, err := tpl.Slots(count)
	if err != nil {
		return nil, nil, err
	}
	return tpl, slots, nil
}

func (s *Service) render(ctx context.Context, tpl *template.Template, slots []template.Slot, photos []imagepkg.Source, start time.Time) (Result, error) {
	images, err := s.loadAll(ctx, photos)
	if err != nil {
		return Result{}, err
	}

	canvas := imagepkg.Compose(tpl.Background, slots, images)

	res, err := s.writer.Write(ctx, canvas)
	if err != nil {
		return Result{}, err
	}
	s.log.Info("composite written",
		zap.String("template", tpl.ID),
		zap.Int("photos", len(images)),
		zap.String("path", res.Path),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// loadAll decodes photos concurrently; the returned slice keeps input
// order so drawing follows slot order.
func (s *Service) loadAll(ctx context.Context, photos []imagepkg.Source) ([]image.Image, error) {
	images := make([]image.Image, len(photos))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range photos {
		g.Go(func() error {
			img, err := s.loader.Load(gctx, src)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (s *Service) observe(templateID string, start time.Time, err error) {
	if err != nil {
		s.observeFailure(err)
		return
	}
	if s.metrics == nil {
		return
	}
	s.metrics.CompositesTotal.WithLabelValues(templateID).Inc()
	s.metrics.CompositeDuration.Observe(time.Since(start).Seconds())
}

func (s *Service) observeFailure(err error) {
	code := apperror.CodeOf(err)
	s.log.Warn("composite failed", zap.String("code", string(code)), zap.Error(err))
	if s.metrics != nil {
		s.metrics.CompositeFailures.WithLabelValues(string(code)).Inc()
	}
}
