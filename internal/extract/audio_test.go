package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/transcribe"
)

type stubTranscriber struct {
	configured bool
	out        transcribe.Transcription
	err        error
	calls      int
}

func (s *stubTranscriber) Configured() bool { return s.configured }

func (s *stubTranscriber) Transcribe(_ context.Context, _ string, _ []byte) (transcribe.Transcription, error) {
	s.calls++
	return s.out, s.err
}

func TestAudioUnconfigured(t *testing.T) {
	res := newTestRouter().Extract(context.Background(), "interview.mp3", []byte("riff"))

	if res.Metadata["errorCode"] != common.CodeTranscriptionUnavailable {
		t.Fatalf("errorCode = %v", res.Metadata["errorCode"])
	}
	if !strings.Contains(res.Error, "TRANSCRIBE_API_KEY") {
		t.Errorf("error should say how to configure: %q", res.Error)
	}
	if !res.NeedsReview || res.Confidence != 0 {
		t.Errorf("review=%v conf=%v", res.NeedsReview, res.Confidence)
	}
}

func TestAudioUnconfiguredClient(t *testing.T) {
	// A wired but keyless client counts as unconfigured.
	tr := &stubTranscriber{configured: false}
	res := newTestRouter(WithTranscriber(tr)).Extract(context.Background(), "call.wav", []byte("riff"))

	if res.Metadata["errorCode"] != common.CodeTranscriptionUnavailable {
		t.Fatalf("errorCode = %v", res.Metadata["errorCode"])
	}
	if tr.calls != 0 {
		t.Error("unconfigured transcriber must not be called")
	}
}

func TestAudioTranscription(t *testing.T) {
	tr := &stubTranscriber{
		configured: true,
		out: transcribe.Transcription{
			Text:     "I saw him leave around midnight.",
			Language: "en",
			Duration: 12.5,
		},
	}
	res := newTestRouter(WithTranscriber(tr)).Extract(context.Background(), "witness.m4a", []byte("riff"))

	if res.Method != constants.MethodTranscription {
		t.Errorf("method = %q", res.Method)
	}
	if res.Text != "I saw him leave around midnight." {
		t.Errorf("text = %q", res.Text)
	}
	if res.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", res.Confidence)
	}
	if res.NeedsReview {
		t.Error("clean transcription should not need review")
	}
	if res.Metadata["durationSeconds"] != 12.5 || res.Metadata["language"] != "en" {
		t.Errorf("metadata = %v", res.Metadata)
	}
}

func TestAudioServiceError(t *testing.T) {
	tr := &stubTranscriber{configured: true, err: errors.New("upstream 503")}
	res := newTestRouter(WithTranscriber(tr)).Extract(context.Background(), "call.ogg", []byte("riff"))

	if res.Metadata["errorCode"] != common.CodeTranscriptionFailed {
		t.Fatalf("errorCode = %v", res.Metadata["errorCode"])
	}
	if !res.NeedsReview {
		t.Error("failed transcription must flag review")
	}
}

func TestAudioEmptyTranscript(t *testing.T) {
	tr := &stubTranscriber{configured: true, out: transcribe.Transcription{Language: "en"}}
	res := newTestRouter(WithTranscriber(tr)).Extract(context.Background(), "static.flac", []byte("riff"))

	if res.Text != PlaceholderNoText {
		t.Errorf("text = %q", res.Text)
	}
	if res.Confidence != 0.1 || !res.NeedsReview {
		t.Errorf("conf=%v review=%v", res.Confidence, res.NeedsReview)
	}
}
