package ollama

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/infrastructure/resilience"
)

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
}

type Client struct {
	baseURL     string
	visionModel string
	genModel    string
	httpClient  *http.Client
	executor    *resilience.Executor
}

func New(baseURL, visionModel, genModel string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if strings.TrimSpace(genModel) == "" {
		genModel = visionModel
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		visionModel: visionModel,
		genModel:    genModel,
		httpClient:  &http.Client{Timeout: timeout},
		executor:    opts.Executor,
	}
}

// Vision describes drawings with a multimodal model such as llava.
type Vision struct {
	client *Client
}

func NewVision(client *Client) *Vision {
	return &Vision{client: client}
}

func (v *Vision) Describe(ctx context.Context, prompt string, image domain.Image) (string, error) {
	if len(image.Data) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "ollama describe", errors.New("image is empty"))
	}
	return v.client.generate(ctx, "describe", map[string]any{
		"model":  v.client.visionModel,
		"prompt": prompt,
		"images": []string{base64.StdEncoding.EncodeToString(image.Data)},
		"stream": false,
	})
}

// Assessor asks the text model for a JSON verdict. The raw response is
// returned unparsed; callers extract the object themselves.
type Assessor struct {
	client *Client
}

func NewAssessor(client *Client) *Assessor {
	return &Assessor{client: client}
}

func (a *Assessor) Assess(ctx context.Context, prompt string) (string, error) {
	return a.client.generate(ctx, "assess", map[string]any{
		"model":   a.client.genModel,
		"prompt":  prompt,
		"stream":  false,
		"format":  "json",
		"options": map[string]any{"temperature": 0.2},
	})
}

func (c *Client) generate(ctx context.Context, operation string, reqBody map[string]any) (string, error) {
	op := "ollama." + operation
	text, err := resilience.Do(ctx, c.executor, op, func(ctx context.Context) (string, error) {
		var response struct {
			Response string `json:"response"`
		}
		if err := c.postJSON(ctx, "/api/generate", reqBody, &response, operation); err != nil {
			return "", wrapTemporaryIfNeeded(op, err)
		}
		return strings.TrimSpace(response.Response), nil
	}, classifyOllamaError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(op, err)
	}
	return text, nil
}
