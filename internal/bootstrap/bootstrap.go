package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/oracion-board/internal/config"
	"github.com/kirillkom/oracion-board/internal/core/liturgy"
	"github.com/kirillkom/oracion-board/internal/core/ports"
	"github.com/kirillkom/oracion-board/internal/core/usecase"
	"github.com/kirillkom/oracion-board/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/oracion-board/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/oracion-board/internal/infrastructure/queue/nats"
	"github.com/kirillkom/oracion-board/internal/infrastructure/repository/memory"
	"github.com/kirillkom/oracion-board/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/oracion-board/internal/infrastructure/resilience"
	"github.com/kirillkom/oracion-board/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/oracion-board/internal/observability/metrics"
)

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

type App struct {
	Config config.Config

	Reflections     ports.ReflectionService
	Interpretations ports.InterpretationService
	Actuator        ports.ActuatorService
	Sessions        ports.SessionReader
	Drawings        ports.DrawingReader
	Metrics         *metrics.HTTPServerMetrics

	closeFns []func()
}

func New(ctx context.Context, cfg config.Config) (_ *App, err error) {
	app := &App{Config: cfg, Metrics: metrics.NewHTTPServerMetrics("oracion-api")}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	table, err := loadTable(cfg.MeditationsFile)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(ResilienceConfig(cfg, app.Metrics.ObserveBreakerState))

	readings, err := app.openReadings(ctx, cfg)
	if err != nil {
		return nil, err
	}

	drawings, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init drawing storage: %w", err)
	}

	var publisher ports.ActuatorPublisher
	if cfg.ActuatorEnabled {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSActuatorSubject, nats.Options{
			ClientName:         "oracion-api",
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init actuator queue: %w", err)
		}
		app.closeFns = append(app.closeFns, queue.Close)
		publisher = queue
	}

	vision, verdicts, speech, err := newModels(ctx, cfg, executor)
	if err != nil {
		return nil, err
	}

	app.Reflections = usecase.NewReflectionUseCase(table, readings, app.Metrics)
	app.Interpretations = usecase.NewInterpretUseCase(
		vision, verdicts, speech, publisher, drawings, readings, app.Metrics,
		usecase.InterpretOptions{MaxImageBytes: cfg.MaxImageBytes, DefaultLang: cfg.SpeechDefaultLang},
	)
	app.Actuator = usecase.NewActuatorUseCase(publisher, readings, app.Metrics)
	app.Sessions = usecase.NewSessionQueryUseCase(readings)
	app.Drawings = usecase.NewDrawingQueryUseCase(drawings)

	slog.Info("bootstrap_ready",
		"vision_provider", cfg.VisionProvider,
		"postgres", cfg.PostgresDSN != "",
		"actuator", cfg.ActuatorEnabled,
		"speech", speech != nil,
	)
	return app, nil
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}

func (a *App) openReadings(ctx context.Context, cfg config.Config) (ports.ReadingRepository, error) {
	if cfg.PostgresDSN == "" {
		slog.Warn("readings_in_memory", "reason", "POSTGRES_DSN is empty")
		return memory.NewReadingRepository(), nil
	}
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	a.closeFns = append(a.closeFns, func() { _ = db.Close() })

	repo := postgres.NewReadingRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return repo, nil
}

func loadTable(path string) (*liturgy.Table, error) {
	if path == "" {
		return liturgy.DefaultTable(), nil
	}
	table, err := liturgy.LoadTableFile(path)
	if err != nil {
		return nil, fmt.Errorf("load meditations: %w", err)
	}
	return table, nil
}

// newModels selects the vision/verdict provider. Speech is only available
// through Gemini and stays nil unless enabled.
func newModels(
	ctx context.Context,
	cfg config.Config,
	executor *resilience.Executor,
) (ports.VisionModel, ports.VerdictModel, ports.SpeechSynthesizer, error) {
	speechOn := cfg.SpeechEnabled
	if speechOn && strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		slog.Warn("speech_disabled", "reason", "GEMINI_API_KEY is empty")
		speechOn = false
	}

	var gc *gemini.Client
	if cfg.VisionProvider == ProviderGemini || speechOn {
		var err error
		gc, err = gemini.New(ctx, cfg.GeminiAPIKey, gemini.Options{
			Model:    cfg.GeminiModel,
			TTSModel: cfg.GeminiTTSModel,
			Voice:    cfg.GeminiTTSVoice,
			Executor: executor,
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init gemini: %w", err)
		}
	}

	var speech ports.SpeechSynthesizer
	if speechOn {
		speech = gc
	}

	switch cfg.VisionProvider {
	case ProviderGemini:
		return gc, gc, speech, nil
	case ProviderOllama, "":
		client := ollama.New(cfg.OllamaURL, cfg.OllamaVisionModel, cfg.OllamaGenModel, ollama.Options{Executor: executor})
		return ollama.NewVision(client), ollama.NewAssessor(client), speech, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown VISION_PROVIDER %q", cfg.VisionProvider)
	}
}

func ResilienceConfig(cfg config.Config, onStateChange func(operation, from, to string)) resilience.Config {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	rc.RetryInitialBackoff = cfg.ResilienceRetryInitialBackoff
	rc.RetryMaxBackoff = cfg.ResilienceRetryMaxBackoff
	rc.BreakerEnabled = cfg.ResilienceBreakerEnabled
	if cfg.ResilienceBreakerMinRequests > 0 {
		rc.BreakerMinRequests = uint32(cfg.ResilienceBreakerMinRequests)
	}
	rc.BreakerFailureRatio = cfg.ResilienceBreakerFailureRatio
	rc.BreakerOpenTimeout = cfg.ResilienceBreakerOpenTimeout
	rc.OnStateChange = onStateChange
	return rc
}
