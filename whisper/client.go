// Package whisper is the single-shot transcription adapter: the whole encoded
// audio container goes up in one request and the response body comes back as
// the final transcript.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "whisper-1"

	// progressStarted distinguishes "request issued" from "idle" in the
	// caller's progress display; the backend gives no mid-flight signal.
	progressStarted = 5
)

// APIError is a non-success response from the transcription endpoint,
// carrying the backend status and body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(
		"transcription request failed: status %d: %s",
		e.StatusCode, e.Body,
	)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// OnProgress receives 0 before the call, a small nonzero marker once the
	// request is issued, 100 on success, and 0 again on failure.
	OnProgress func(percent float64)
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger
}

func NewClient(cfg Config, logger *log.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 5 * time.Minute},
		logger: logger,
	}
}

// Transcribe uploads the WAV container and returns the transcript text.
func (c *Client) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	c.reportProgress(0)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := writer.WriteField("model", c.cfg.Model); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	url := fmt.Sprintf("%s/audio/transcriptions", c.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APIKey))
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("uploading audio", "bytes", len(wavData), "model", c.cfg.Model)
	c.reportProgress(progressStarted)

	resp, err := c.http.Do(req)
	if err != nil {
		c.reportProgress(0)
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.reportProgress(0)
		return "", fmt.Errorf("read transcription response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.reportProgress(0)
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	c.reportProgress(100)
	return strings.TrimSpace(string(respBody)), nil
}

func (c *Client) reportProgress(percent float64) {
	if c.cfg.OnProgress != nil {
		c.cfg.OnProgress(percent)
	}
}
