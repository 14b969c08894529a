package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	LogLevel string

	// Empty DSN keeps readings in memory.
	PostgresDSN string

	NATSURL             string
	NATSActuatorSubject string
	ActuatorEnabled     bool
	ActuatorMetricsPort string

	VisionProvider    string
	OllamaURL         string
	OllamaVisionModel string
	OllamaGenModel    string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiTTSModel    string
	GeminiTTSVoice    string

	SpeechEnabled     bool
	SpeechDefaultLang string

	StoragePath     string
	MeditationsFile string
	MaxImageBytes   int

	APIRateLimitRPS     float64
	APIRateLimitBurst   int
	APIMaxInFlight      int
	APIBackpressureWait time.Duration

	ResilienceRetryMaxAttempts    int
	ResilienceRetryInitialBackoff time.Duration
	ResilienceRetryMaxBackoff     time.Duration
	ResilienceBreakerEnabled      bool
	ResilienceBreakerMinRequests  int
	ResilienceBreakerFailureRatio float64
	ResilienceBreakerOpenTimeout  time.Duration
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:             mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSActuatorSubject: mustEnv("NATS_ACTUATOR_SUBJECT", "board.servo.angle"),
		ActuatorEnabled:     mustEnvBool("ACTUATOR_ENABLED", true),
		ActuatorMetricsPort: mustEnv("ACTUATOR_METRICS_PORT", "9091"),

		VisionProvider:    strings.ToLower(mustEnv("VISION_PROVIDER", "ollama")),
		OllamaURL:         mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaVisionModel: mustEnv("OLLAMA_VISION_MODEL", "llava:7b"),
		OllamaGenModel:    mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		GeminiAPIKey:      mustEnv("GEMINI_API_KEY", ""),
		GeminiModel:       mustEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTTSModel:    mustEnv("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiTTSVoice:    mustEnv("GEMINI_TTS_VOICE", "Kore"),

		SpeechEnabled:     mustEnvBool("SPEECH_ENABLED", false),
		SpeechDefaultLang: mustEnv("SPEECH_DEFAULT_LANG", "es-US"),

		StoragePath:     mustEnv("STORAGE_PATH", "./data/drawings"),
		MeditationsFile: mustEnv("MEDITATIONS_FILE", ""),
		MaxImageBytes:   mustEnvInt("MAX_IMAGE_BYTES", 5<<20),

		APIRateLimitRPS:     mustEnvFloat("API_RATE_LIMIT_RPS", 10),
		APIRateLimitBurst:   mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIMaxInFlight:      mustEnvInt("API_MAX_IN_FLIGHT", 16),
		APIBackpressureWait: mustEnvDuration("API_BACKPRESSURE_WAIT", 250*time.Millisecond),

		ResilienceRetryMaxAttempts:    mustEnvInt("RESILIENCE_RETRY_MAX_ATTEMPTS", 3),
		ResilienceRetryInitialBackoff: mustEnvDuration("RESILIENCE_RETRY_INITIAL_BACKOFF", 150*time.Millisecond),
		ResilienceRetryMaxBackoff:     mustEnvDuration("RESILIENCE_RETRY_MAX_BACKOFF", time.Second),
		ResilienceBreakerEnabled:      mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),
		ResilienceBreakerMinRequests:  mustEnvInt("RESILIENCE_BREAKER_MIN_REQUESTS", 5),
		ResilienceBreakerFailureRatio: mustEnvFloat("RESILIENCE_BREAKER_FAILURE_RATIO", 0.6),
		ResilienceBreakerOpenTimeout:  mustEnvDuration("RESILIENCE_BREAKER_OPEN_TIMEOUT", 20*time.Second),
	}
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func mustEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

// mustEnvDuration accepts Go durations ("250ms") or bare milliseconds.
func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
