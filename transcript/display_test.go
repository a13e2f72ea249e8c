package transcript

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestDisplaySplitsCommittedAndLive(t *testing.T) {
	d := NewDisplay()

	d.Update("hello", false)
	d.Update("hello world", false)
	if got := d.builder.Pending(); got != "hello world" {
		t.Errorf("Pending() = %q, want the whole live hypothesis", got)
	}

	d.Update("hello world", true)
	if got := d.builder.Final(); got != "hello world" {
		t.Errorf("Final() = %q after boundary", got)
	}
	if got := d.builder.Pending(); got != "" {
		t.Errorf("Pending() = %q after boundary, want empty", got)
	}

	// The next turn's updates still carry the committed prefix; only the
	// remainder is live.
	d.Update("hello world and more", false)
	if got := d.builder.Pending(); got != "and more" {
		t.Errorf("Pending() = %q, want only the new turn", got)
	}
	if got := d.builder.Final(); got != "hello world" {
		t.Errorf("Final() = %q, committed text must not grow", got)
	}
}

func TestDisplayStylesPendingDistinctly(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	d := NewDisplay()
	live := d.Update("still talking", false)
	if !strings.Contains(live, "\x1b[") {
		t.Errorf("live view %q carries no styling", live)
	}

	committed := d.Update("still talking", true)
	if strings.Contains(committed, "\x1b[") {
		t.Errorf("committed view %q should render plain", committed)
	}
	if !strings.Contains(committed, "still talking") {
		t.Errorf("committed view %q lost the text", committed)
	}
}
