package ui

import (
	"strings"
	"testing"

	"github.com/danhigham/telegrame/internal/avatar"
)

func TestRenderAvatar(t *testing.T) {
	img, err := avatar.Render("M")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := renderAvatar(img, avatarCells, "Mark")
	if !strings.Contains(out, "▀") && !strings.Contains(out, "▄") {
		t.Error("no half blocks in the rendered picture")
	}
	if lines := strings.Count(out, "\n") + 1; lines != avatarCells/2 {
		t.Errorf("lines = %d, want %d", lines, avatarCells/2)
	}

	if got := renderAvatar([]byte("not a png"), avatarCells, "mark"); !strings.Contains(got, "M") {
		t.Errorf("fallback = %q, want the initial", got)
	}
}
