package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestFitTrail(t *testing.T) {
	trail := []string{"Home", "Pattern Library", "auth-failed"}

	assert.Equal(t, "Home › Pattern Library › auth-failed", fitTrail(trail, 80))
	assert.Equal(t, "… › Pattern Library › auth-failed", fitTrail(trail, 34))
	assert.Equal(t, "… › auth-failed", fitTrail(trail, 20))
	assert.Equal(t, "auth-fa…", fitTrail(trail, 8))
	assert.Equal(t, "", fitTrail(nil, 20))
	assert.Equal(t, "", fitTrail(trail, 0))
}

func TestFitHints(t *testing.T) {
	hints := []KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}

	assert.Equal(t, hints, fitHints(hints, 200))

	got := fitHints(hints, 40)
	assert.Equal(t, []KeyHint{hints[0], hints[1], hints[3]}, got)

	got = fitHints(hints, 5)
	assert.Equal(t, []KeyHint{hints[3]}, got, "quit survives any width")

	assert.Nil(t, fitHints(nil, 80))
}

func TestFrame_Render(t *testing.T) {
	f := Frame{
		Trail:  []string{"Home", "Troubleshoot"},
		Status: "offline · patterns v1.2.0",
		Hints:  []KeyHint{{Key: "Ctrl+C", Description: "Quit"}},
	}

	var gotW, gotH int
	out := f.Render(100, 30, func(w, h int) string {
		gotW, gotH = w, h
		return "body"
	})

	assert.Equal(t, 100, gotW)
	assert.Equal(t, 30-6, gotH, "header and footer take three rows each")
	assert.Equal(t, 30, lipgloss.Height(out))
	for _, want := range []string{"gitguy", "Home › Troubleshoot", "offline · patterns v1.2.0", "body", "Ctrl+C"} {
		assert.Contains(t, out, want)
	}
}

func TestFrame_RenderTooSmall(t *testing.T) {
	called := false
	out := Frame{}.Render(60, 15, func(int, int) string {
		called = true
		return ""
	})
	assert.False(t, called)
	assert.True(t, strings.Contains(out, "at least 72×20"))
}

func TestCompactThresholds(t *testing.T) {
	assert.True(t, IsCompactWidth(99))
	assert.False(t, IsCompactWidth(100))
	assert.True(t, IsCompactHeight(29))
	assert.False(t, IsCompactHeight(30))
}
