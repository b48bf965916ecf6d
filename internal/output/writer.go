// Package output persists finished composites and raw uploads into the
// capture directory.
package output

import (
	"bufio"
	"context"
	"image"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/youruser/photobooth/internal/apperror"
	"github.com/youruser/photobooth/internal/util"
)

const (
	DefaultQuality  = 90
	CompositePrefix = "composited_"
	PhotoPrefix     = "photo_"
)

// Result describes a file written by Writer.
type Result struct {
	// Path is the public path the file is served under, e.g.
	// /captured/composited_<token>.jpg.
	Path   string `json:"path"`
	Name   string `json:"-"`
	File   string `json:"-"`
	Width  int    `json:"-"`
	Height int    `json:"-"`
}

// Writer encodes images as JPEG into dir. Files appear under their final
// name only once fully written.
type Writer struct {
	dir       string
	urlPrefix string
	quality   int
	log       *zap.Logger

	token func() (string, error)
}

// NewWriter returns a Writer storing into dir and reporting paths under
// urlPrefix. quality <= 0 selects DefaultQuality.
func NewWriter(dir, urlPrefix string, quality int, log *zap.Logger) *Writer {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{dir: dir, urlPrefix: urlPrefix, quality: quality, log: log, token: newToken}
}

// Dir returns the directory files are written to.
func (w *Writer) Dir() string { return w.dir }

// Write stores a finished composite as composited_<token>.jpg.
func (w *Writer) Write(ctx context.Context, canvas image.Image) (Result, error) {
	return w.write(ctx, CompositePrefix, canvas)
}

// WritePhoto stores a single uploaded frame as photo_<token>.jpg.
func (w *Writer) WritePhoto(ctx context.Context, img image.Image) (Result, error) {
	return w.write(ctx, PhotoPrefix, img)
}

// Remove deletes a file previously returned by this writer.
func (w *Writer) Remove(res Result) error {
	if res.Name == "" || filepath.Base(res.Name) != res.Name {
		return apperror.New(apperror.CodeWriteError, "invalid output name %q", res.Name)
	}
	if err := os.Remove(filepath.Join(w.dir, res.Name)); err != nil && !os.IsNotExist(err) {
		return apperror.Wrap(apperror.CodeWriteError, err, "removing %s", res.Name)
	}
	return nil
}

func (w *Writer) write(ctx context.Context, prefix string, img image.Image) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, apperror.Wrap(apperror.CodeWriteError, err, "write cancelled")
	}
	tok, err := w.token()
	if err != nil {
		return Result{}, apperror.Wrap(apperror.CodeWriteError, err, "generating output name")
	}
	if err := util.EnsureDir(w.dir); err != nil {
		return Result{}, apperror.Wrap(apperror.CodeWriteError, err, "creating %s", w.dir)
	}

	name := prefix + tok + ".jpg"
	dest := filepath.Join(w.dir, name)
	if err := w.writeAtomic(dest, img); err != nil {
		return Result{}, apperror.Wrap(apperror.CodeWriteError, err, "writing %s", name)
	}

	b := img.Bounds()
	res := Result{
		Path:   path.Join("/", w.urlPrefix, name),
		Name:   name,
		File:   dest,
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	w.log.Debug("output written", zap.String("file", dest), zap.Int("quality", w.quality))
	return res, nil
}

func (w *Writer) writeAtomic(dest string, img image.Image) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriterSize(tmp, 64*1024)
	if err = imaging.Encode(bw, img, imaging.JPEG, imaging.JPEGQuality(w.quality)); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, dest)
}

// newToken returns a time-ordered UUID so names sort by creation and never
// repeat across concurrent writers.
func newToken() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
