package imagegen

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGGeneratesDecodableImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.png")
	require.NoError(t, PNG{}.Generate(320, 240, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestPNGIsDeterministicForSize(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	require.NoError(t, PNG{}.Generate(64, 64, a))
	require.NoError(t, PNG{}.Generate(64, 64, b))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestPNGRejectsUnwritablePath(t *testing.T) {
	err := PNG{}.Generate(16, 16, filepath.Join(t.TempDir(), "missing", "x.png"))
	assert.Error(t, err)
}

func TestDetectReturnsAGenerator(t *testing.T) {
	gen := Detect()
	require.NotNil(t, gen)
	assert.Contains(t, []string{"imagemagick", "png"}, gen.Name())
}
