package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/youruser/photobooth/internal/apperror"
)

const (
	LayoutFile     = "layout.json"
	BackgroundFile = "background.png"
)

var schemaLoader = gojsonschema.NewStringLoader(layoutSchema)

// Store reads templates from a directory with one sub-directory per
// template. Nothing is cached: every Load re-reads the files.
type Store struct {
	root string
	log  *zap.Logger
}

func NewStore(root string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{root: root, log: log}
}

// Root returns the directory templates are read from.
func (s *Store) Root() string { return s.root }

// Load reads and validates the template named id.
func (s *Store) Load(id string) (*Template, error) {
	if !validID(id) {
		return nil, apperror.New(apperror.CodeNotFound, "template %q not found", id)
	}
	dir := filepath.Join(s.root, id)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, apperror.Wrap(apperror.CodeNotFound, err, "template %q not found", id)
	}

	raw, err := os.ReadFile(filepath.Join(dir, LayoutFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperror.Wrap(apperror.CodeNotFound, err, "template %q has no %s", id, LayoutFile)
		}
		return nil, apperror.Wrap(apperror.CodeNotFound, err, "reading %s of %q", LayoutFile, id)
	}

	bgPath := filepath.Join(dir, BackgroundFile)
	if _, err := os.Stat(bgPath); err != nil {
		return nil, apperror.Wrap(apperror.CodeNotFound, err, "template %q has no %s", id, BackgroundFile)
	}
	bg, err := imaging.Open(bgPath)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInvalidFormat, err, "template %q background is not an image", id)
	}

	layouts, err := parseLayouts(raw, bg.Bounds())
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInvalidFormat, err, "template %q has an invalid %s", id, LayoutFile)
	}

	t := &Template{ID: id, Dir: dir, Background: bg, Layouts: layouts}
	s.log.Debug("template loaded",
		zap.String("template", id),
		zap.Ints("counts", t.Counts()),
		zap.Int("width", bg.Bounds().Dx()),
		zap.Int("height", bg.Bounds().Dy()),
	)
	return t, nil
}

// List returns the names of the directories under the store root that
// contain a layout descriptor.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	out := []string{}
	for _, e := range entries {
		if !e.IsDir() || !validID(e.Name()) {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, e.Name(), LayoutFile)); err == nil {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func validID(id string) bool {
	if id == "" || id == "." || id == ".." || strings.HasPrefix(id, ".") {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && filepath.Base(id) == id
}

func parseLayouts(raw []byte, bounds image.Rectangle) (map[int][]Slot, error) {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, err
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, errors.New(strings.Join(msgs, "; "))
	}

	var doc struct {
		Layouts map[string][]Slot `json:"layouts"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make(map[int][]Slot, len(doc.Layouts))
	for key, slots := range doc.Layouts {
		n, err := strconv.Atoi(key)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("layout key %q is not a positive integer", key)
		}
		if _, dup := out[n]; dup {
			return nil, fmt.Errorf("layout %d declared twice", n)
		}
		if len(slots) != n {
			return nil, fmt.Errorf("layout %q declares %d slot(s)", key, len(slots))
		}
		for i, sl := range slots {
			if !sl.Rect().Add(bounds.Min).In(bounds) {
				return nil, fmt.Errorf("layout %q slot %d %v lies outside the %dx%d background",
					key, i, sl.Rect(), bounds.Dx(), bounds.Dy())
			}
		}
		out[n] = slots
	}
	return out, nil
}
