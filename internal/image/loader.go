package imagepkg

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // browser captures may arrive as image/webp

	"github.com/youruser/photobooth/internal/apperror"
)

// Source references one photo: a file name inside the capture directory,
// raw encoded bytes, or an already decoded image. Exactly one is set.
type Source struct {
	Filename string
	Data     []byte
	Image    image.Image
}

func FileSource(name string) Source { return Source{Filename: name} }

func BytesSource(b []byte) Source { return Source{Data: b} }

func DecodedSource(img image.Image) Source { return Source{Image: img} }

func (s Source) String() string {
	switch {
	case s.Image != nil:
		return "decoded image"
	case s.Data != nil:
		return "upload"
	default:
		return s.Filename
	}
}

// Loader decodes photo sources. File sources are resolved against dir.
type Loader struct {
	dir     string
	timeout time.Duration
}

// NewLoader returns a Loader reading from dir. A timeout <= 0 disables the
// per-photo decode deadline.
func NewLoader(dir string, timeout time.Duration) *Loader {
	return &Loader{dir: dir, timeout: timeout}
}

// Load decodes src, failing with a DecodeError if it cannot be read or
// decoded within the loader's timeout.
func (l *Loader) Load(ctx context.Context, src Source) (image.Image, error) {
	if src.Image != nil {
		return src.Image, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, apperror.Wrap(apperror.CodeDecodeError, err, "decoding %s cancelled", src)
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		var r result
		if src.Data != nil {
			r.img, r.err = DecodeBytes(src.Data)
		} else {
			r.img, r.err = l.decodeFile(src.Filename)
		}
		done <- r
	}()

	select {
	case r := <-done:
		return r.img, r.err
	case <-ctx.Done():
		return nil, apperror.Wrap(apperror.CodeDecodeError, ctx.Err(), "decoding %s timed out", src)
	}
}

func (l *Loader) decodeFile(name string) (image.Image, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, apperror.New(apperror.CodeDecodeError, "invalid photo name %q", name)
	}
	return DecodeFile(filepath.Join(l.dir, name))
}

// DecodeBytes decodes an encoded image held in memory.
func DecodeBytes(b []byte) (image.Image, error) {
	if len(b) == 0 {
		return nil, apperror.New(apperror.CodeDecodeError, "empty image data")
	}
	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDecodeError, err, "image data is not a supported image")
	}
	return img, nil
}

// DecodeFile decodes the image stored at path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDecodeError, err, "cannot read photo %s", filepath.Base(path))
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDecodeError, err, "photo %s is not a supported image", filepath.Base(path))
	}
	return img, nil
}
