package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/kirillkom/oracion-board/internal/core/domain"
)

type readingRepoFake struct {
	mu    sync.Mutex
	saved []domain.Reading
	err   error
}

func (f *readingRepoFake) Save(_ context.Context, r *domain.Reading) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *r)
	return nil
}

func (f *readingRepoFake) Latest(_ context.Context, sessionID string) (*domain.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].SessionID == sessionID {
			r := f.saved[i]
			return &r, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

func (f *readingRepoFake) List(_ context.Context, sessionID string, limit int) ([]domain.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reading
	for _, r := range f.saved {
		if r.SessionID == sessionID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

type drawingStorageFake struct {
	key  string
	body string
	err  error
}

func (f *drawingStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.key = key
	f.body = string(raw)
	return nil
}

func (f *drawingStorageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if key != f.key {
		return nil, domain.WrapError(domain.ErrDrawingNotFound, "open drawing", errors.New(key))
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

type visionFake struct {
	text   string
	err    error
	prompt string
	image  domain.Image
}

func (f *visionFake) Describe(_ context.Context, prompt string, image domain.Image) (string, error) {
	f.prompt = prompt
	f.image = image
	return f.text, f.err
}

type verdictModelFake struct {
	blob   string
	err    error
	prompt string
}

func (f *verdictModelFake) Assess(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.blob, f.err
}

type speechFake struct {
	err  error
	lang string
}

func (f *speechFake) Synthesize(_ context.Context, text, lang string) (*domain.Speech, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lang = lang
	return &domain.Speech{MimeType: "audio/wav", Lang: lang, Audio: []byte(text)}, nil
}

type publisherFake struct {
	mu   sync.Mutex
	cmds []domain.ActuatorCommand
	err  error
}

func (f *publisherFake) PublishCommand(_ context.Context, cmd domain.ActuatorCommand) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, cmd)
	return nil
}

type observerFake struct {
	mu         sync.Mutex
	categories []domain.Category
	verdicts   []domain.Verdict
	effects    map[string]domain.SideEffectStatus
}

func (f *observerFake) ObserveReflection(c domain.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, c)
}

func (f *observerFake) ObserveVerdict(v domain.Verdict) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verdicts = append(f.verdicts, v)
}

func (f *observerFake) ObserveSideEffect(effect string, status domain.SideEffectStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.effects == nil {
		f.effects = map[string]domain.SideEffectStatus{}
	}
	f.effects[effect] = status
}

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
