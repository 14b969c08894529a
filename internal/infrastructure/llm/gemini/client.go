package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/infrastructure/resilience"
)

const (
	defaultModel    = "gemini-2.5-flash"
	defaultTTSModel = "gemini-2.5-flash-preview-tts"
	defaultVoice    = "Kore"
)

type Options struct {
	Model    string
	TTSModel string
	Voice    string
	Executor *resilience.Executor
}

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client serves drawing descriptions, verdicts and speech from the Gemini API.
type Client struct {
	generate generateFunc
	model    string
	ttsModel string
	voice    string
	executor *resilience.Executor
}

func New(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "gemini client", errors.New("api key is required"))
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newWithGenerator(gc.Models.GenerateContent, opts), nil
}

func newWithGenerator(generate generateFunc, opts Options) *Client {
	c := &Client{
		generate: generate,
		model:    strings.TrimSpace(opts.Model),
		ttsModel: strings.TrimSpace(opts.TTSModel),
		voice:    strings.TrimSpace(opts.Voice),
		executor: opts.Executor,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.ttsModel == "" {
		c.ttsModel = defaultTTSModel
	}
	if c.voice == "" {
		c.voice = defaultVoice
	}
	return c
}

func (c *Client) Describe(ctx context.Context, prompt string, image domain.Image) (string, error) {
	if len(image.Data) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "gemini describe", errors.New("image is empty"))
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image.Data, image.MimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	resp, err := c.call(ctx, "gemini.describe", c.model, contents, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (c *Client) Assess(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.call(ctx, "gemini.assess", c.model, contents, cfg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

// Synthesize reads text aloud with a prebuilt voice and returns a WAV file.
func (c *Client) Synthesize(ctx context.Context, text, lang string) (*domain.Speech, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "gemini synthesize", errors.New("text is empty"))
	}
	cfg := &genai.GenerateContentConfig{
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: lang,
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.voice},
			},
		},
	}
	cfg.ResponseModalities = append(cfg.ResponseModalities, "AUDIO")

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := c.call(ctx, "gemini.synthesize", c.ttsModel, contents, cfg)
	if err != nil {
		return nil, err
	}
	pcm, mimeType, err := extractAudio(resp)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "gemini synthesize", err)
	}
	return &domain.Speech{
		MimeType: "audio/wav",
		Lang:     lang,
		Audio:    wavFromPCM(pcm, pcmSampleRate(mimeType)),
	}, nil
}

func (c *Client) call(
	ctx context.Context,
	operation string,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	resp, err := resilience.Do(ctx, c.executor, operation, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		resp, err := c.generate(ctx, model, contents, cfg)
		if err != nil {
			return nil, wrapTemporaryIfNeeded(operation, err)
		}
		return resp, nil
	}, classifyGeminiError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded(operation, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, domain.WrapError(domain.ErrTemporary, operation, errors.New("no candidates in response"))
	}
	return resp, nil
}

func extractAudio(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, part.InlineData.MIMEType, nil
			}
		}
	}
	return nil, "", errors.New("response carries no audio")
}
