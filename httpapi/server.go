// Package httpapi exposes the controller over HTTP: sensor readings,
// per-relay rules and labels, force overrides, and node info.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/verdantlabs/growbox"
)

// ServerOptions configures the HTTP API server.
type ServerOptions struct {
	Controller *growbox.Controller
	Metrics    *growbox.Metrics
	Logger     *slog.Logger
	AccessLog  io.Writer
}

// Server routes HTTP requests to the controller.
type Server struct {
	controller *growbox.Controller
	metrics    *growbox.Metrics
	logger     *slog.Logger
	accessLog  io.Writer
}

func NewServer(opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.AccessLog == nil {
		opts.AccessLog = io.Discard
	}
	return &Server{
		controller: opts.Controller,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		accessLog:  opts.AccessLog,
	}
}

// Router builds the request router with recovery and access logging
// wrapped around every handler.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/sensor-info", s.handleSensorInfo).Methods(http.MethodGet)
	r.HandleFunc("/rule", s.handleGetRule).Methods(http.MethodGet)
	r.HandleFunc("/rule", s.handleSetRule).Methods(http.MethodPost)
	r.HandleFunc("/relays", s.handleGetRelays).Methods(http.MethodGet)
	r.HandleFunc("/relays", s.handleForceRelay).Methods(http.MethodPost)
	r.HandleFunc("/relay-labels", s.handleGetLabels).Methods(http.MethodGet)
	r.HandleFunc("/relay-label", s.handleSetLabel).Methods(http.MethodPost)
	r.HandleFunc("/global-info", s.handleGlobalInfo).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.LoggingHandler(s.accessLog, r))
}

// ListenAndServe runs the API until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("http server listening", "addr", addr)
	return srv.ListenAndServe()
}

type sensorInfoResponse struct {
	TemperatureC         float64   `json:"temperature_c"`
	TemperatureF         float64   `json:"temperature_f"`
	Humidity             float64   `json:"humidity"`
	ProbeTemperatureC    float64   `json:"probe_temperature_c"`
	ProbeTemperatureF    float64   `json:"probe_temperature_f"`
	LightLevel           float64   `json:"light_level"`
	LightSwitch          bool      `json:"light_switch"`
	SecondsSinceMidnight int       `json:"seconds_since_midnight"`
	CapturedAt           time.Time `json:"captured_at"`
}

func (s *Server) handleSensorInfo(w http.ResponseWriter, r *http.Request) {
	snap := s.controller.Snapshot()
	writeJSON(w, http.StatusOK, sensorInfoResponse{
		TemperatureC:         snap.Temperature,
		TemperatureF:         growbox.CToF(snap.Temperature),
		Humidity:             snap.Humidity,
		ProbeTemperatureC:    snap.ProbeTemperature,
		ProbeTemperatureF:    growbox.CToF(snap.ProbeTemperature),
		LightLevel:           snap.LightLevel,
		LightSwitch:          snap.LightSwitch,
		SecondsSinceMidnight: snap.SecondsSinceMidnight,
		CapturedAt:           snap.CapturedAt,
	})
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	i, ok := relayIndex(w, r)
	if !ok {
		return
	}
	rule, err := s.controller.Rule(i)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"relay": i, "rule": rule})
}

func (s *Server) handleSetRule(w http.ResponseWriter, r *http.Request) {
	i, ok := relayIndex(w, r)
	if !ok {
		return
	}
	rule := r.FormValue("v")
	if rule == "" {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read rule body")
			return
		}
		rule = string(body)
	}
	if err := s.controller.SetRule(r.Context(), i, rule); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	s.logger.Info("rule updated", "relay", i)
	writeJSON(w, http.StatusOK, map[string]any{"relay": i, "rule": rule})
}

type relaysResponse struct {
	Values []growbox.RelayValue `json:"values"`
	States []bool               `json:"states"`
	Labels []string             `json:"labels"`
}

func (s *Server) handleGetRelays(w http.ResponseWriter, r *http.Request) {
	bank := s.controller.Bank()
	writeJSON(w, http.StatusOK, relaysResponse{
		Values: bank.Values(),
		States: bank.States(),
		Labels: bank.Labels(),
	})
}

func (s *Server) handleForceRelay(w http.ResponseWriter, r *http.Request) {
	i, ok := relayIndex(w, r)
	if !ok {
		return
	}
	force, err := strconv.Atoi(r.FormValue("v"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid force value")
		return
	}
	if err := s.controller.ForceRelay(i, force); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	s.logger.Info("relay forced", "relay", i, "force", force)
	writeJSON(w, http.StatusOK, map[string]any{"relay": i, "force": force})
}

func (s *Server) handleGetLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"labels": s.controller.Bank().Labels()})
}

func (s *Server) handleSetLabel(w http.ResponseWriter, r *http.Request) {
	i, ok := relayIndex(w, r)
	if !ok {
		return
	}
	label := r.FormValue("v")
	if label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}
	if err := s.controller.SetLabel(r.Context(), i, label); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"relay": i, "label": label})
}

func (s *Server) handleGlobalInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.GlobalInfo())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func relayIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.FormValue("i")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "relay index is required")
		return 0, false
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid relay index %q", raw))
		return 0, false
	}
	return i, true
}

func errorStatus(err error) int {
	switch {
	case growbox.IsNotFound(err):
		return http.StatusNotFound
	case growbox.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
