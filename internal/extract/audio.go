package extract

import (
	"context"
	"path/filepath"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
)

// Transcription output is treated as highly reliable; the service does its
// own quality control and exposes no per-word signal.
const transcriptionConfidence = 0.9

// extractAudio delegates to the speech-to-text collaborator. An unconfigured
// service is an explicit, informative failure rather than an attempted call.
func (r *Router) extractAudio(ctx context.Context, path string, data []byte) ExtractionResult {
	if r.transcriber == nil || !r.transcriber.Configured() {
		return failureResult(constants.MethodTranscription, common.CodeTranscriptionUnavailable,
			"transcription service not configured; set TRANSCRIBE_API_KEY to enable audio extraction")
	}

	tr, err := r.transcriber.Transcribe(ctx, filepath.Base(path), data)
	if err != nil {
		r.logger.Error("transcription failed", "path", path, "error", err)
		return failureResult(constants.MethodTranscription, common.CodeTranscriptionFailed, err.Error())
	}

	res := ExtractionResult{
		Text:       tr.Text,
		Method:     constants.MethodTranscription,
		Confidence: transcriptionConfidence,
		Metadata: map[string]any{
			"durationSeconds": tr.Duration,
			"language":        tr.Language,
		},
	}
	if res.Text == "" {
		res.Text = PlaceholderNoText
		res.Confidence = 0.1
		res.NeedsReview = true
	}
	return res
}
