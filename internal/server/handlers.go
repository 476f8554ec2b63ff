package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tmansmann0/capsim-ml/internal/export"
	"github.com/tmansmann0/capsim-ml/internal/forecast"
	"github.com/tmansmann0/capsim-ml/internal/model"
	"github.com/tmansmann0/capsim-ml/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

type accumulatorResponse struct {
	Records     []model.ProductRecord `json:"records"`
	Diagnostics []model.Diagnostic    `json:"diagnostics"`
}

type appendResponse struct {
	ExtractionID string             `json:"extraction_id,omitempty"`
	Records      int                `json:"records"`
	Diagnostics  int                `json:"diagnostics"`
	Total        int                `json:"total"`
	Round        *int               `json:"round"`
	Problems     []model.Diagnostic `json:"problems,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readReport turns a request into a RawReport: the body is the report text
// and an optional round query parameter overrides the text marker.
func (s *Server) readReport(w http.ResponseWriter, r *http.Request) (model.RawReport, int, error) {
	var report model.RawReport
	if raw := r.URL.Query().Get("round"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return report, http.StatusBadRequest, eris.Errorf("invalid round %q", raw)
		}
		report.Round = model.IntPtr(n)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return report, http.StatusRequestEntityTooLarge, eris.New("report too large")
		}
		return report, http.StatusBadRequest, eris.Wrap(err, "read body")
	}
	report.Text = string(body)
	return report, 0, nil
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	report, status, err := s.readReport(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.extractor.Extract(report))
}

func (s *Server) handleAccumulatorAppend(w http.ResponseWriter, r *http.Request) {
	report, status, err := s.readReport(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	res := s.extractor.Extract(report)
	resp := appendResponse{Round: res.Round, Problems: res.Diagnostics}

	if s.store != nil {
		ex, err := s.store.SaveExtraction(r.Context(), "http", res)
		if err != nil {
			zap.L().Error("server: persist extraction", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to persist extraction")
			return
		}
		resp.ExtractionID = ex.ID
	}

	sum := s.acc.Append(res)
	resp.Records = sum.Records
	resp.Diagnostics = sum.Diagnostics
	resp.Total = sum.Total
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccumulatorGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, accumulatorResponse{
		Records:     nonNil(s.acc.Records()),
		Diagnostics: nonNil(s.acc.Diagnostics()),
	})
}

func (s *Server) handleAccumulatorCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="capsim_records.csv"`)
	if err := export.WriteCSV(w, s.acc.Records()); err != nil {
		zap.L().Error("server: write csv", zap.Error(err))
	}
}

func (s *Server) handleAccumulatorClear(w http.ResponseWriter, _ *http.Request) {
	n := s.acc.Len()
	s.acc.Clear()
	writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

func (s *Server) handleForecast(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(forecast.FromRecords(s.acc.Records())))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no store configured")
		return
	}

	q := r.URL.Query()
	var filter store.RecordFilter
	if raw := q.Get("segment"); raw != "" {
		seg, ok := model.ParseSegment(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown segment "+strings.TrimSpace(raw))
			return
		}
		filter.Segment = seg
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		*dst = n
	}
	if raw := q.Get("round"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid round")
			return
		}
		filter.Round = model.IntPtr(n)
	}

	records, err := s.store.ListRecords(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list records", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
