package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"patchbay/domain/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const overlayWithNoise = `
nodeTypes:
  - name: NoiseNode
    category: source
    native: true
    outputs:
      - name: output
        type: audio
`

func writeCatalog(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestWatcher(t *testing.T, initial string) (*CatalogWatcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeCatalog(t, path, initial)

	w, err := NewCatalogWatcher(path, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(w.Stop)
	return w, path
}

func TestCatalogWatcher_InitialLoad(t *testing.T) {
	w, _ := newTestWatcher(t, "nodeTypes: []\n")

	// Empty overlay means the builtin table as-is
	_, ok := w.Current().Lookup(catalog.TypeGain)
	assert.True(t, ok)
	_, ok = w.Current().Lookup("NoiseNode")
	assert.False(t, ok)
}

func TestCatalogWatcher_InitialLoadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewCatalogWatcher(path, zap.NewNop())

	assert.Error(t, err)
}

func TestCatalogWatcher_ReloadsOnWrite(t *testing.T) {
	w, path := newTestWatcher(t, "nodeTypes: []\n")
	w.Start()

	reloaded := make(chan *catalog.Catalog, 1)
	w.OnChange(func(c *catalog.Catalog) {
		select {
		case reloaded <- c:
		default:
		}
	})

	writeCatalog(t, path, overlayWithNoise)

	select {
	case c := <-reloaded:
		_, ok := c.Lookup("NoiseNode")
		assert.True(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("catalog reload did not fire")
	}

	_, ok := w.Current().Lookup("NoiseNode")
	assert.True(t, ok)
}

func TestCatalogWatcher_KeepsCurrentOnParseFailure(t *testing.T) {
	w, path := newTestWatcher(t, overlayWithNoise)
	w.Start()

	writeCatalog(t, path, "nodeTypes: [broken")

	// Give the debounce and reload a moment to run
	time.Sleep(500 * time.Millisecond)

	_, ok := w.Current().Lookup("NoiseNode")
	assert.True(t, ok, "a bad overlay must not evict the working catalog")
}
