package summary

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSurfaceAppendsInOrder(t *testing.T) {
	surface := NewSurface(ModePlainText)
	require.False(t, surface.Visible())

	require.NoError(t, surface.Render(Delta{Text: "A"}, true))
	require.NoError(t, surface.Render(Delta{Text: "B"}, false))
	require.NoError(t, surface.Render(Delta{Text: "C"}, false))

	require.True(t, surface.Visible())
	require.Equal(t, "ABC", surface.Text())
}

func TestSurfaceFirstDeltaClearsPreviousSession(t *testing.T) {
	surface := NewSurface(ModePlainText)
	require.NoError(t, surface.Render(Delta{Text: "stale output"}, true))

	require.NoError(t, surface.Render(Delta{Text: "fresh"}, true))
	require.NoError(t, surface.Render(Delta{Text: " output"}, false))
	require.Equal(t, "fresh output", surface.Text())
}

func TestSurfaceToleratesEmptyDelta(t *testing.T) {
	surface := NewSurface(ModePlainText)
	require.NoError(t, surface.Render(Delta{Text: "old"}, true))

	// An empty first delta forces the clear without visible content.
	require.NoError(t, surface.Render(Delta{}, true))
	require.Empty(t, surface.Text())
	require.True(t, surface.Visible())
}

func TestSurfacePlainTextEscapesHTML(t *testing.T) {
	surface := NewSurface(ModePlainText)
	require.NoError(t, surface.Render(Delta{Text: `<script>alert("x")</script>`}, true))

	out, err := surface.HTML()
	require.NoError(t, err)
	require.NotContains(t, out, "<script>")
}

func TestSurfaceSafeMarkupKeepsRawHTMLEscaped(t *testing.T) {
	surface := NewSurface(ModeSafeMarkup)
	require.NoError(t, surface.Render(Delta{Text: "**bold** <script>alert(1)</script>"}, true))

	out, err := surface.HTML()
	require.NoError(t, err)
	require.Contains(t, out, "<strong>bold</strong>")
	require.NotContains(t, out, "<script>")
}
