package gemini

import (
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/infrastructure/resilience"
)

type generateCall struct {
	model    string
	contents []*genai.Content
	cfg      *genai.GenerateContentConfig
}

func fakeGenerator(calls *[]generateCall, resp *genai.GenerateContentResponse, errs ...error) generateFunc {
	return func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		*calls = append(*calls, generateCall{model: model, contents: contents, cfg: cfg})
		if n := len(*calls); n <= len(errs) && errs[n-1] != nil {
			return nil, errs[n-1]
		}
		return resp, nil
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestDescribeSendsImageAndPrompt(t *testing.T) {
	var calls []generateCall
	c := newWithGenerator(fakeGenerator(&calls, textResponse("  Un corazón rodeado de luz. ")), Options{})

	got, err := c.Describe(context.Background(), "interpreta", domain.Image{MimeType: "image/png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if got != "Un corazón rodeado de luz." {
		t.Fatalf("unexpected text %q", got)
	}
	if len(calls) != 1 || calls[0].model != defaultModel {
		t.Fatalf("unexpected calls %+v", calls)
	}
	parts := calls[0].contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "image/png" || parts[1].Text != "interpreta" {
		t.Fatalf("unexpected parts %+v", parts)
	}
}

func TestAssessRequestsJSON(t *testing.T) {
	var calls []generateCall
	c := newWithGenerator(fakeGenerator(&calls, textResponse(`{"label":"BAJO","confidence":12}`)), Options{Model: "gemini-test"})

	got, err := c.Assess(context.Background(), "evalúa")
	if err != nil {
		t.Fatalf("Assess() error = %v", err)
	}
	if got != `{"label":"BAJO","confidence":12}` {
		t.Fatalf("unexpected blob %q", got)
	}
	if calls[0].model != "gemini-test" || calls[0].cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("unexpected call %+v", calls[0])
	}
}

func TestSynthesizeWrapsPCMAsWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{
				InlineData: &genai.Blob{MIMEType: "audio/L16;codec=pcm;rate=16000", Data: pcm},
			}}},
		}},
	}
	var calls []generateCall
	c := newWithGenerator(fakeGenerator(&calls, resp), Options{Voice: "Puck"})

	speech, err := c.Synthesize(context.Background(), "Paz a ti.", "es-US")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if speech.MimeType != "audio/wav" || speech.Lang != "es-US" {
		t.Fatalf("unexpected speech %+v", speech)
	}
	if len(speech.Audio) != 44+len(pcm) || string(speech.Audio[:4]) != "RIFF" || string(speech.Audio[8:12]) != "WAVE" {
		t.Fatalf("unexpected wav header % x", speech.Audio[:12])
	}
	if rate := binary.LittleEndian.Uint32(speech.Audio[24:28]); rate != 16000 {
		t.Fatalf("expected sample rate 16000, got %d", rate)
	}

	cfg := calls[0].cfg
	if calls[0].model != defaultTTSModel || len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "AUDIO" {
		t.Fatalf("unexpected tts call %+v", calls[0])
	}
	if cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Puck" || cfg.SpeechConfig.LanguageCode != "es-US" {
		t.Fatalf("unexpected speech config %+v", cfg.SpeechConfig)
	}
}

func TestSynthesizeWithoutAudioIsTemporary(t *testing.T) {
	var calls []generateCall
	c := newWithGenerator(fakeGenerator(&calls, textResponse("no audio")), Options{})
	if _, err := c.Synthesize(context.Background(), "hola", "es-US"); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestRateLimitedCallsAreRetried(t *testing.T) {
	var calls []generateCall
	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
	})
	gen := fakeGenerator(&calls, textResponse("ok"), genai.APIError{Code: http.StatusTooManyRequests, Message: "quota"})
	c := newWithGenerator(gen, Options{Executor: exec})

	got, err := c.Assess(context.Background(), "x")
	if err != nil || got != "ok" {
		t.Fatalf("Assess() = %q, %v", got, err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
}

func TestPermanentAPIErrorIsNotTemporary(t *testing.T) {
	var calls []generateCall
	gen := fakeGenerator(&calls, nil, genai.APIError{Code: http.StatusBadRequest, Message: "bad image"})
	c := newWithGenerator(gen, Options{})

	_, err := c.Describe(context.Background(), "x", domain.Image{MimeType: "image/png", Data: []byte{1}})
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusBadRequest {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestEmptyCandidatesAreTemporary(t *testing.T) {
	var calls []generateCall
	c := newWithGenerator(fakeGenerator(&calls, &genai.GenerateContentResponse{}), Options{})
	if _, err := c.Assess(context.Background(), "x"); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestPCMSampleRate(t *testing.T) {
	cases := map[string]int{
		"audio/L16;codec=pcm;rate=24000": 24000,
		"audio/L16; rate=8000":           8000,
		"audio/L16":                      defaultSampleRate,
		"audio/L16;rate=abc":             defaultSampleRate,
		"":                               defaultSampleRate,
	}
	for in, want := range cases {
		if got := pcmSampleRate(in); got != want {
			t.Fatalf("pcmSampleRate(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), " ", Options{}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
