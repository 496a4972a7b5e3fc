package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/aegis/internal/common"
)

const defaultListLimit = 50

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"version":     common.GetVersion(),
		"environment": s.app.Config.Environment,
		"uptime":      time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetFullVersion(),
	})
}

// ResearchRequest is the body of POST /api/research.
type ResearchRequest struct {
	Task string `json:"task"`
}

// handleResearch handles POST /api/research: one full pipeline run.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ResearchRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Task = strings.TrimSpace(req.Task)
	if req.Task == "" {
		WriteError(w, http.StatusBadRequest, "Field 'task' is required")
		return
	}

	report, err := s.app.Pipeline.Run(r.Context(), req.Task)
	if err != nil {
		s.logger.Error().Err(err).Msg("Pipeline run failed")
		WriteError(w, http.StatusBadGateway, "Research pipeline failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// handleReportList handles GET /api/reports.
func (s *Server) handleReportList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	reports, err := s.app.ReportStore.ListReports(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list reports: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, reports)
}

// handleReportGet handles GET /api/reports/{id}.
func (s *Server) handleReportGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/reports/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Report ID is required")
		return
	}

	report, err := s.app.ReportStore.GetReport(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleAlerts handles GET /api/alerts.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	alerts, err := s.app.WatchStore.Recent(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to read alerts: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, alerts)
}

// WatchlistRequest is the body of PUT /api/watchlist.
type WatchlistRequest struct {
	Symbols []string `json:"symbols"`
}

// handleWatchlist handles GET and PUT /api/watchlist.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut) {
		return
	}

	if r.Method == http.MethodGet {
		symbols, err := s.app.WatchStore.GetWatchlist(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to read watchlist: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, symbols)
		return
	}

	var req WatchlistRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	symbols := make([]string, 0, len(req.Symbols))
	for _, symbol := range req.Symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	if err := s.app.WatchStore.SaveWatchlist(r.Context(), symbols); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to save watchlist: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, symbols)
}
