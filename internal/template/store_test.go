package template

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/youruser/photobooth/internal/apperror"
)

const classicLayout = `{
  "layouts": {
    "1": [{"x": 20, "y": 20, "width": 600, "height": 360}],
    "2": [
      {"x": 0, "y": 0, "width": 300, "height": 400},
      {"x": 320, "y": 0, "width": 300, "height": 400}
    ]
  }
}`

func writeTemplate(t *testing.T, root, id, layout string, w, h int) string {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if layout != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, LayoutFile), []byte(layout), 0o644))
	}
	if w > 0 && h > 0 {
		bg := imaging.New(w, h, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		require.NoError(t, imaging.Save(bg, filepath.Join(dir, BackgroundFile)))
	}
	return dir
}

func TestStore_Load(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "classic", classicLayout, 640, 400)
	store := NewStore(root, zaptest.NewLogger(t))

	tpl, err := store.Load("classic")
	require.NoError(t, err)
	assert.Equal(t, "classic", tpl.ID)
	assert.Equal(t, 640, tpl.Background.Bounds().Dx())
	assert.Equal(t, 400, tpl.Background.Bounds().Dy())
	assert.Equal(t, []int{1, 2}, tpl.Counts())
	assert.Equal(t, []Slot{
		{X: 0, Y: 0, Width: 300, Height: 400},
		{X: 320, Y: 0, Width: 300, Height: 400},
	}, tpl.Layouts[2])
}

func TestStore_Load_Errors(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "no-layout", "", 100, 100)
	writeTemplate(t, root, "no-background", classicLayout, 0, 0)
	writeTemplate(t, root, "not-json", `{"layouts": `, 640, 400)
	writeTemplate(t, root, "bad-key", `{"layouts": {"two": [{"x":0,"y":0,"width":1,"height":1}]}}`, 640, 400)
	writeTemplate(t, root, "zero-key", `{"layouts": {"0": [{"x":0,"y":0,"width":1,"height":1}]}}`, 640, 400)
	writeTemplate(t, root, "count-mismatch", `{"layouts": {"2": [{"x":0,"y":0,"width":1,"height":1}]}}`, 640, 400)
	writeTemplate(t, root, "negative", `{"layouts": {"1": [{"x":-1,"y":0,"width":1,"height":1}]}}`, 640, 400)
	writeTemplate(t, root, "zero-size", `{"layouts": {"1": [{"x":0,"y":0,"width":0,"height":1}]}}`, 640, 400)
	writeTemplate(t, root, "fractional", `{"layouts": {"1": [{"x":0.5,"y":0,"width":1,"height":1}]}}`, 640, 400)
	writeTemplate(t, root, "out-of-bounds", `{"layouts": {"1": [{"x":600,"y":0,"width":100,"height":100}]}}`, 640, 400)
	writeTemplate(t, root, "empty", `{"layouts": {}}`, 640, 400)

	corrupt := writeTemplate(t, root, "corrupt-bg", classicLayout, 0, 0)
	require.NoError(t, os.WriteFile(filepath.Join(corrupt, BackgroundFile), []byte("not a png"), 0o644))

	store := NewStore(root, zaptest.NewLogger(t))

	tests := []struct {
		id   string
		code apperror.Code
	}{
		{"missing", apperror.CodeNotFound},
		{"", apperror.CodeNotFound},
		{"../classic", apperror.CodeNotFound},
		{"..", apperror.CodeNotFound},
		{"no-layout", apperror.CodeNotFound},
		{"no-background", apperror.CodeNotFound},
		{"not-json", apperror.CodeInvalidFormat},
		{"bad-key", apperror.CodeInvalidFormat},
		{"zero-key", apperror.CodeInvalidFormat},
		{"count-mismatch", apperror.CodeInvalidFormat},
		{"negative", apperror.CodeInvalidFormat},
		{"zero-size", apperror.CodeInvalidFormat},
		{"fractional", apperror.CodeInvalidFormat},
		{"out-of-bounds", apperror.CodeInvalidFormat},
		{"empty", apperror.CodeInvalidFormat},
		{"corrupt-bg", apperror.CodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := store.Load(tt.id)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.CodeOf(err), err.Error())
		})
	}
}

func TestStore_Load_RereadsFromDisk(t *testing.T) {
	root := t.TempDir()
	dir := writeTemplate(t, root, "classic", classicLayout, 640, 400)
	store := NewStore(root, zaptest.NewLogger(t))

	_, err := store.Load("classic")
	require.NoError(t, err)

	updated := `{"layouts": {"3": [
		{"x":0,"y":0,"width":10,"height":10},
		{"x":10,"y":0,"width":10,"height":10},
		{"x":20,"y":0,"width":10,"height":10}]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, LayoutFile), []byte(updated), 0o644))

	tpl, err := store.Load("classic")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, tpl.Counts())
}

func TestStore_List(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "strip", classicLayout, 640, 400)
	writeTemplate(t, root, "classic", classicLayout, 640, 400)
	writeTemplate(t, root, "bare", "", 10, 10)
	writeTemplate(t, root, ".hidden", classicLayout, 640, 400)
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644))

	names, err := NewStore(root, nil).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"classic", "strip"}, names)

	names, err = NewStore(filepath.Join(root, "nope"), nil).List()
	require.NoError(t, err)
	assert.Empty(t, names)
}
