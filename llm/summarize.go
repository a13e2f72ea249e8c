// Package llm turns a finished transcript into a summary through a single
// stateless request to a language model backend.
package llm

import "context"

const systemPrompt = `Summarize the following transcript of a recording.

Open with a single sentence naming the overall topic, then cover the main
points in the order they come up. Keep technical terms as spoken. Use
markdown: bullet points, bold for key terms. Finish with a short "Notes"
section if anything needs emphasis.`

// Summarizer produces a summary for a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcription string) (string, error)
}
