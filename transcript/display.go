package transcript

import "strings"

// Display adapts cumulative transcript updates into a styled terminal view.
// Update events carry the full joined transcript, so Display tracks how much
// of it is already committed and feeds only the live remainder to a builder;
// Render then dims the remainder until its turn boundary arrives.
type Display struct {
	builder  *Builder
	finalLen int
}

func NewDisplay() *Display {
	return &Display{builder: NewBuilder(Replace)}
}

// Update consumes one transcript event and returns the styled view.
func (d *Display) Update(text string, final bool) string {
	if d.finalLen > len(text) {
		d.finalLen = len(text)
	}
	d.builder.Write(strings.TrimSpace(text[d.finalLen:]))
	if final {
		d.builder.EndTurn()
		d.finalLen = len(text)
	}
	return d.builder.Render()
}
