package transcript

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Policy controls how partial (non-final) transcription events combine with
// the pending fragment. Which one is correct depends on the backend contract:
// backends that emit incremental deltas want Append, backends that resend the
// whole current hypothesis want Replace.
type Policy int

const (
	// Append concatenates each partial event onto the pending fragment.
	Append Policy = iota
	// Replace discards the previous pending fragment on each partial event.
	Replace
)

// Builder accumulates transcript text as it arrives from a backend.
// Finalized segments are immutable once committed; at most one pending
// fragment exists at a time and is absorbed into a new segment when a turn
// boundary arrives.
type Builder struct {
	policy   Policy
	segments []string
	pending  string
}

func NewBuilder(policy Policy) *Builder {
	return &Builder{policy: policy}
}

// Write records a partial transcription event.
func (b *Builder) Write(text string) {
	if text == "" {
		return
	}
	switch b.policy {
	case Replace:
		b.pending = text
	default:
		b.pending += text
	}
}

// EndTurn commits the pending fragment as a finalized segment and clears it.
// An empty pending fragment commits nothing.
func (b *Builder) EndTurn() {
	if strings.TrimSpace(b.pending) == "" {
		b.pending = ""
		return
	}
	b.segments = append(b.segments, strings.TrimSpace(b.pending))
	b.pending = ""
}

// Segments returns the finalized segments in arrival order.
func (b *Builder) Segments() []string {
	return b.segments
}

// Pending returns the current non-final fragment.
func (b *Builder) Pending() string {
	return b.pending
}

// Text joins finalized segments and the pending fragment with single spaces,
// trimmed. This is what the transcript-update callback reports.
func (b *Builder) Text() string {
	parts := make([]string, 0, len(b.segments)+1)
	parts = append(parts, b.segments...)
	if p := strings.TrimSpace(b.pending); p != "" {
		parts = append(parts, p)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Final joins only the finalized segments; this is the terminal result text.
func (b *Builder) Final() string {
	return strings.TrimSpace(strings.Join(b.segments, " "))
}

var (
	finalStyle   = lipgloss.NewStyle()
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Render returns the transcript for terminal display, pending text dimmed.
func (b *Builder) Render() string {
	var sb strings.Builder
	sb.WriteString(finalStyle.Render(b.Final()))
	if p := strings.TrimSpace(b.pending); p != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(pendingStyle.Render(p))
	}
	return sb.String()
}
