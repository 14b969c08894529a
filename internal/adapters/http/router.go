package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/oracion-board/internal/config"
	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/jsonspan"
	"github.com/kirillkom/oracion-board/internal/core/ports"
	"github.com/kirillkom/oracion-board/internal/observability/metrics"
)

const (
	serviceName      = "oracion-api"
	maxJSONBodyBytes = 64 << 10
	maxToolBodyBytes = 1 << 20
)

type Router struct {
	cfg             config.Config
	reflections     ports.ReflectionService
	interpretations ports.InterpretationService
	actuator        ports.ActuatorService
	sessions        ports.SessionReader
	drawings        ports.DrawingReader
	metrics         *metrics.HTTPServerMetrics
}

// NewRouter wires the HTTP surface. httpMetrics may be nil, in which case
// /metrics is not served.
func NewRouter(
	cfg config.Config,
	reflections ports.ReflectionService,
	interpretations ports.InterpretationService,
	actuator ports.ActuatorService,
	sessions ports.SessionReader,
	drawings ports.DrawingReader,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:             cfg,
		reflections:     reflections,
		interpretations: interpretations,
		actuator:        actuator,
		sessions:        sessions,
		drawings:        drawings,
		metrics:         httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/reflections", rt.reflect)
	mux.HandleFunc("/v1/interpretations", rt.interpret)
	mux.HandleFunc("/v1/actuator/angle", rt.moveActuator)
	mux.HandleFunc("/v1/sessions/", rt.sessionReadings)
	mux.HandleFunc("/v1/drawings/", rt.drawing)
	mux.HandleFunc("/v1/tools/extract-json", rt.extractJSON)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) reflect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.ReflectRequest
	if err := rt.decodeBody(w, r, schemaReflection, maxJSONBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}

	reflection, err := rt.reflections.Reflect(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reflection)
}

type interpretRequest struct {
	SessionID   string `json:"session_id"`
	Mode        string `json:"mode"`
	ImageBase64 string `json:"image_base64"`
	Note        string `json:"note"`
	Speak       bool   `json:"speak"`
	Lang        string `json:"lang"`
	Publish     bool   `json:"publish"`
}

func (rt *Router) interpret(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req interpretRequest
	if err := rt.decodeBody(w, r, schemaInterpretation, rt.maxInterpretBodyBytes(), &req); err != nil {
		writeError(w, r, err)
		return
	}
	image, err := decodeImage(req.ImageBase64)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := rt.interpretations.Interpret(r.Context(), domain.InterpretRequest{
		SessionID: req.SessionID,
		Mode:      domain.InterpretMode(req.Mode),
		Image:     image,
		Note:      req.Note,
		Speak:     req.Speak,
		Lang:      req.Lang,
		Publish:   req.Publish,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) moveActuator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req domain.MoveRequest
	if err := rt.decodeBody(w, r, schemaActuatorMove, maxJSONBodyBytes, &req); err != nil {
		writeError(w, r, err)
		return
	}

	cmd, err := rt.actuator.Move(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, cmd)
}

// sessionReadings serves /v1/sessions/{id}/latest and /v1/sessions/{id}/readings.
func (rt *Router) sessionReadings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	sessionID, view, ok := strings.Cut(rest, "/")
	if !ok || sessionID == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	switch view {
	case "latest":
		reading, err := rt.sessions.Latest(r.Context(), sessionID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reading)
	case "readings":
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
				return
			}
			limit = n
		}
		readings, err := rt.sessions.List(r.Context(), sessionID, limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "readings": readings})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

// drawing serves /v1/drawings/{key}, the drawing_key of an interpretation.
func (rt *Router) drawing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/v1/drawings/")
	if key == "" || strings.Contains(key, "/") || rt.drawings == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	rc, mimeType, err := rt.drawings.OpenDrawing(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("drawing_stream_failed", "key", key, "error", err)
	}
}

// extractJSON exposes the balanced-brace extractor for debugging model output.
func (rt *Router) extractJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxToolBodyBytes))
	if err != nil {
		writeError(w, r, err)
		return
	}

	span, found := jsonspan.FirstSpan(string(body))
	resp := map[string]any{"found": found, "object": nil}
	if found {
		resp["object"] = json.RawMessage(span)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) decodeBody(w http.ResponseWriter, r *http.Request, schema string, limit int64, out any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body exceeds %d bytes: %w", maxBytesErr.Limit, err)
		}
		return domain.WrapError(domain.ErrInvalidInput, "read request", err)
	}
	return decodeValidated(schema, body, out)
}

// maxInterpretBodyBytes leaves room for base64 expansion and the other fields.
func (rt *Router) maxInterpretBodyBytes() int64 {
	maxImage := rt.cfg.MaxImageBytes
	if maxImage <= 0 {
		maxImage = 5 << 20
	}
	return int64(maxImage)*4/3 + maxJSONBodyBytes
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
