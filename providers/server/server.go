// Package server exposes the HTTP surface: a webhook route for form
// submissions and a root dispatcher that routes prompt names to batch jobs.
// Blocking prompts run inline and return their report; non-blocking prompts
// are acknowledged immediately with a run id and execute in the background.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/edlowe/flatsheet/providers/ingest"
	"github.com/edlowe/flatsheet/providers/jobs"
)

// Prompt names accepted by the dispatcher.
const (
	PromptConvert = "JSON_to_csv"
	PromptFormat  = "format_csv"
	PromptCleanup = "delete_input_output_files"
)

// maxRequestBody caps a dispatch or webhook request (5MB).
const maxRequestBody = 5 * 1024 * 1024

// backgroundJobTimeout bounds a non-blocking job run.
const backgroundJobTimeout = 10 * time.Minute

type promptSpec struct {
	blocking bool
	run      func(ctx context.Context) (any, error)
}

// Server wires the dispatcher and the webhook route over a job runner and
// an ingestor.
type Server struct {
	runner      *jobs.Runner
	ing         *ingest.Ingestor
	log         *slog.Logger
	ingestRoute string
	prompts     map[string]promptSpec
	jobDone     func(runID string, err error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithJobDone registers a callback invoked when a background job finishes,
// mainly for tests.
func WithJobDone(fn func(runID string, err error)) Option {
	return func(s *Server) { s.jobDone = fn }
}

// New returns a Server dispatching to runner, with the webhook served at
// ingestRoute. The route must start with "/".
func New(runner *jobs.Runner, ing *ingest.Ingestor, ingestRoute string, opts ...Option) (*Server, error) {
	if ingestRoute == "" || ingestRoute[0] != '/' {
		return nil, fmt.Errorf("server: ingest route %q must start with /", ingestRoute)
	}
	if ingestRoute == "/" {
		return nil, fmt.Errorf("server: ingest route cannot be the dispatch root")
	}

	s := &Server{
		runner:      runner,
		ing:         ing,
		log:         slog.Default(),
		ingestRoute: ingestRoute,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.prompts = map[string]promptSpec{
		PromptConvert: {blocking: true, run: func(ctx context.Context) (any, error) {
			return s.runner.Convert(ctx)
		}},
		PromptFormat: {blocking: false, run: func(ctx context.Context) (any, error) {
			return s.runner.Format(ctx)
		}},
		PromptCleanup: {blocking: true, run: func(ctx context.Context) (any, error) {
			return s.runner.Cleanup(ctx)
		}},
	}
	return s, nil
}

// Handler returns the HTTP handler serving both routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+s.ingestRoute, s.handleWebhook)
	mux.HandleFunc("POST /{$}", s.handleDispatch)
	return mux
}

type dispatchRequest struct {
	Prompt string `json:"prompt"`
	RunID  string `json:"run_id"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	var req dispatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "missing 'prompt' key")
		return
	}

	spec, ok := s.prompts[req.Prompt]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown prompt %q", req.Prompt))
		return
	}

	if spec.blocking {
		s.log.Info("running prompt", "prompt", req.Prompt)
		result, err := spec.run(r.Context())
		if err != nil {
			s.log.Error("prompt failed", "prompt", req.Prompt, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "done",
			"result": result,
		})
		return
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	s.log.Info("starting background prompt", "prompt", req.Prompt, "run_id", runID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundJobTimeout)
		defer cancel()

		_, err := spec.run(ctx)
		if err != nil {
			s.log.Error("background prompt failed",
				"prompt", req.Prompt, "run_id", runID, "error", err)
		} else {
			s.log.Info("background prompt finished",
				"prompt", req.Prompt, "run_id", runID)
		}
		if s.jobDone != nil {
			s.jobDone(runID, err)
		}
	}()

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "processing",
		"run_id": runID,
	})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	path, err := s.ing.Process(r.Context(), body)
	if errors.Is(err, ingest.ErrMissingFileField) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "error", "message": err.Error(),
		})
		return
	}
	if err != nil {
		s.log.Error("webhook ingestion failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error", "message": err.Error(),
		})
		return
	}

	s.log.Info("ingested submission", "path", path)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"path":   path,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
