// Package transcribe calls a Whisper-compatible speech-to-text endpoint.
// The pipeline treats the service as a black box: audio bytes in, text plus
// duration/language metadata out.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
)

// Transcription is the normalized service response.
type Transcription struct {
	Text     string
	Language string
	Duration float64 // seconds
}

type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
	logger   *slog.Logger
}

func NewClient(cfg common.TranscribeConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Configured reports whether the service can be called at all. Unconfigured
// clients must not attempt the request; callers return an explicit failure
// result instead.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.endpoint != ""
}

// whisperResponse matches the verbose_json response shape.
type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Transcribe posts the audio bytes as a multipart upload and returns the
// normalized transcription.
func (c *Client) Transcribe(ctx context.Context, filename string, data []byte) (Transcription, error) {
	if !c.Configured() {
		return Transcription{}, fmt.Errorf("transcription service not configured")
	}

	reqID := uuid.New().String()
	start := time.Now()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return Transcription{}, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return Transcription{}, fmt.Errorf("write audio part: %w", err)
	}
	if err := mw.WriteField("model", c.model); err != nil {
		return Transcription{}, fmt.Errorf("write model field: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return Transcription{}, fmt.Errorf("write format field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Transcription{}, fmt.Errorf("finish multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		c.logger.Error("transcribe.build_request_error", "req_id", reqID, "error", err)
		return Transcription{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Info("transcribe.request",
		"req_id", reqID,
		"file", filename,
		"bytes", len(data),
		"model", c.model,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("transcribe.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Transcription{}, err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("transcribe.response_body_close_error", "req_id", reqID, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("transcribe.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return Transcription{}, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var wr whisperResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return Transcription{}, fmt.Errorf("decode response: %w", err)
	}
	return Transcription{Text: wr.Text, Language: wr.Language, Duration: wr.Duration}, nil
}
