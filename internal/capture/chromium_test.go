package capture

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	o := Options{HTMLPath: "a.html", OutputPath: "a.png"}
	require.NoError(t, o.normalize())
	require.Equal(t, DefaultWidth, o.Width)
	require.Equal(t, DefaultHeight, o.Height)
	require.Equal(t, 30*time.Second, o.Timeout)
}

func TestSheetPNGRequiresPaths(t *testing.T) {
	require.Error(t, SheetPNG(context.Background(), Options{OutputPath: "a.png"}))
	require.Error(t, SheetPNG(context.Background(), Options{HTMLPath: "a.html"}))
}

func TestFileURL(t *testing.T) {
	dir := t.TempDir()
	u, err := FileURL(filepath.Join(dir, "rapport activité.html"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "file://"), u)
	require.Contains(t, u, "rapport%20activit")
}
