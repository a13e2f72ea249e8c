package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

type GeminiSummarizer struct {
	apiKeys    []string
	currentKey int
	model      string
	logger     *log.Logger
}

// NewGeminiSummarizer builds a summarizer over the Gemini API, rotating
// through the supplied API keys when one hits its quota.
func NewGeminiSummarizer(apiKeys []string, model string, logger *log.Logger) *GeminiSummarizer {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiSummarizer{
		apiKeys: apiKeys,
		model:   model,
		logger:  logger,
	}
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, transcription string) (string, error) {
	if len(s.apiKeys) == 0 {
		return "", fmt.Errorf("no Gemini API keys configured")
	}

	prompt := systemPrompt + "\n\nTranscript:\n---\n" + transcription + "\n---"

	var lastErr error
	for range s.apiKeys {
		key := s.apiKeys[s.currentKey]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), nil)
		if err != nil {
			if isQuotaError(err) {
				s.logger.Warn("Gemini key rate limited, rotating",
					"key_index", s.currentKey)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return "", fmt.Errorf("empty response from Gemini")
		}
		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
		return text.String(), nil
	}

	return "", fmt.Errorf("all Gemini API keys exhausted: %w", lastErr)
}

func (s *GeminiSummarizer) rotateKey() {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
