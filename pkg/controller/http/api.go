package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/service/artifact"
	"github.com/secmon-lab/stormfront/pkg/usecase"
	"github.com/secmon-lab/stormfront/pkg/utils/errutil"
	"github.com/secmon-lab/stormfront/pkg/utils/safe"
)

// UseCase is the application surface served over HTTP. *usecase.UseCases
// implements it.
type UseCase interface {
	Ask(ctx context.Context, prompt string) (*usecase.AskResult, error)
	MemoryContext(ctx context.Context) (string, error)
	WipeMemory(ctx context.Context) error
	History(ctx context.Context) ([]*model.CaptureEntry, error)
	Results(ctx context.Context) ([]model.RunID, error)
	Result(ctx context.Context, runID model.RunID) (*model.ResultArtifact, error)
}

type stormRequest struct {
	Prompt string `json:"prompt"`
}

type stormResponse struct {
	RunID         model.RunID `json:"run_id"`
	Text          string      `json:"text"`
	Frozen        bool        `json:"frozen"`
	SelectedIndex *int        `json:"selected_index"`
	Confidence    float64     `json:"confidence"`
	DCXMin        float64     `json:"dcx_min"`
	RowMeans      []float64   `json:"row_means"`
	Committed     bool        `json:"committed"`
	Provider      string      `json:"provider"`
	ElapsedMS     int64       `json:"elapsed_ms"`
}

type memoryResponse struct {
	Context string `json:"context"`
}

type captureResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt"`
	Output    string    `json:"output"`
}

type historyResponse struct {
	Entries []captureResponse `json:"entries"`
}

type resultsResponse struct {
	RunIDs []model.RunID `json:"run_ids"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func stormHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stormRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			errutil.HandleHTTP(r.Context(), w, goerr.New("prompt is required"), http.StatusBadRequest)
			return
		}

		result, err := uc.Ask(r.Context(), req.Prompt)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		run := result.Run
		writeJSON(w, r, http.StatusOK, stormResponse{
			RunID:         run.ID,
			Text:          run.Text,
			Frozen:        run.Frozen,
			SelectedIndex: run.SelectedIndex,
			Confidence:    run.Confidence,
			DCXMin:        run.DCXMin,
			RowMeans:      run.RowMeans,
			Committed:     result.Committed,
			Provider:      string(run.Provider),
			ElapsedMS:     run.Elapsed.Milliseconds(),
		})
	}
}

func memoryHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := uc.MemoryContext(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, r, http.StatusOK, memoryResponse{Context: text})
	}
}

func wipeMemoryHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.WipeMemory(r.Context()); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func historyHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := uc.History(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		resp := historyResponse{Entries: make([]captureResponse, len(entries))}
		for i, e := range entries {
			resp.Entries[i] = captureResponse{
				Timestamp: e.Timestamp,
				Prompt:    e.Prompt,
				Output:    e.Output,
			}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func resultsHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := uc.Results(r.Context())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}
		if ids == nil {
			ids = []model.RunID{}
		}
		writeJSON(w, r, http.StatusOK, resultsResponse{RunIDs: ids})
	}
}

func resultHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := model.RunID(chi.URLParam(r, "runID"))
		a, err := uc.Result(r.Context(), runID)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}
		writeJSON(w, r, http.StatusOK, a)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrArtifactsDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, artifact.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
