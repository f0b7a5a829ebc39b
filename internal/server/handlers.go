package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mwantia/screener/pkg/explorer"
	"github.com/mwantia/screener/pkg/query"
	"github.com/mwantia/screener/pkg/savedquery"
)

const (
	noticeHeader = "X-Screener-Notice"
	recentLimit  = 5
)

type viewResponse struct {
	explorer.Page
	Location string `json:"location"`
}

type locationResponse struct {
	Location string `json:"location"`
}

type filterRequest struct {
	Value string `json:"value"`
}

type searchRequest struct {
	Query   string            `json:"query"`
	Company string            `json:"company"`
	Filters query.FilterState `json:"filters"`
}

// downloadWriter turns an export into an attachment response. Once sent is
// set the status line is out and no other response may follow.
type downloadWriter struct {
	w    http.ResponseWriter
	sent bool
}

func (d *downloadWriter) Download(ctx context.Context, file query.ExportFile) error {
	d.w.Header().Set("Content-Type", file.MIME)
	d.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	d.w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	d.w.WriteHeader(http.StatusOK)
	d.sent = true
	_, err := d.w.Write(file.Content)
	return err
}

// confirmParam is the confirmation of a request: "?confirm=true".
func confirmParam(r *http.Request) explorer.ConfirmationPrompt {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return explorer.Confirmed(confirmed)
}

func (s *Server) writeView(w http.ResponseWriter, status int, message string) {
	page, err := s.explorer.Result()
	if err != nil {
		writeResponse(w, NewErrorResponseFrom(err))
		return
	}
	s.metrics.records.Set(float64(page.TotalCount))

	writeResponse(w, NewResponse(status, message, viewResponse{
		Page:     page,
		Location: s.explorer.Location(),
	}))
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, http.StatusOK, "Current view")
}

func (s *Server) handleOpenView(w http.ResponseWriter, r *http.Request) {
	if err := s.explorer.Open(r.Context(), "?"+r.URL.RawQuery); err != nil {
		s.log.Warn("Opened view without records: %v", err)
	}
	s.writeView(w, http.StatusOK, "Opened view")
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := readRequest(r, &req); err != nil {
		writeResponse(w, NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	column := r.PathValue("column")
	s.explorer.SetFilter(column, req.Value)
	s.writeView(w, http.StatusOK, fmt.Sprintf("Filtered column %s", column))
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.explorer.ClearFilters()
	s.writeView(w, http.StatusOK, "Cleared all filters")
}

func (s *Server) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	view := s.explorer.ToggleSort(r.PathValue("column"))
	s.writeView(w, http.StatusOK, fmt.Sprintf("Sorted by %s", view.Sort()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	download := &downloadWriter{w: w}
	file, err := s.explorer.Export(r.Context(), download)
	if errors.Is(err, query.ErrNothingToExport) {
		w.Header().Set(noticeHeader, "No data to export")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil && download.sent {
		s.log.Warn("Export interrupted: %v", err)
		return
	}
	if err != nil {
		writeResponse(w, NewErrorResponseFrom(err))
		return
	}

	s.metrics.exports.Inc()
	s.log.Debug("Sent export %s (%d bytes)", file.Name, len(file.Content))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	location, err := s.explorer.Snapshot()
	if err != nil {
		writeResponse(w, NewErrorResponseFrom(err))
		return
	}
	writeResponse(w, NewResponse(http.StatusOK, "Snapshot of the current view", locationResponse{Location: location}))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := readRequest(r, &req); err != nil {
		writeResponse(w, NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	location, err := s.explorer.SearchLocation(req.Query, req.Company, req.Filters)
	if err != nil {
		writeResponse(w, NewErrorResponseFrom(err))
		return
	}
	writeResponse(w, NewResponse(http.StatusOK, "Search location", locationResponse{Location: location}))
}

func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	queries, err := s.explorer.SavedQueries(r.Context())
	if err != nil {
		writeResponse(w, NewErrorResponseFrom(err))
		return
	}
	s.metrics.savedQueries.Set(float64(len(queries)))
	writeResponse(w, NewResponse(http.StatusOK, fmt.Sprintf("Found %d saved queries", len(queries)), queries))
}

func (s *Server) handleRecentQueries(w http.ResponseWriter, r *http.Request) {
	limit := recentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeResponse(w, NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("invalid limit '%s'", raw)))
			return
		}
		limit = n
	}

	queries, err := s.explorer.RecentQueries(r.Context(), limit)
	if err != nil {
		writeResponse(w, NewErrorResponseFrom(err))
		return
	}
	writeResponse(w, NewResponse(http.StatusOK, fmt.Sprintf("Found %d recent queries", len(queries)), queries))
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	draft := s.explorer.PrepareSave("?" + r.URL.RawQuery)
	writeResponse(w, NewResponse(http.StatusOK, "Save form", draft))
}

func (s *Server) handleSaveQuery(w http.ResponseWriter, r *http.Request) {
	var form explorer.SaveForm
	if err := readRequest(r, &form); err != nil {
		writeResponse(w, NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	saved, err := s.explorer.SaveQuery(r.Context(), form)
	if err != nil {
		writeResponse(w, NewErrorResponseFrom(err))
		return
	}
	s.countSavedQueries(r.Context())
	writeResponse(w, NewResponse(http.StatusCreated, "Query saved successfully!", saved))
}

// countSavedQueries syncs the saved_queries gauge with the repository.
func (s *Server) countSavedQueries(ctx context.Context) {
	n, err := s.explorer.CountQueries(ctx)
	if err != nil {
		s.log.Warn("Failed to count saved queries: %v", err)
		return
	}
	s.metrics.savedQueries.Set(float64(n))
}

func (s *Server) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := s.explorer.DeleteQuery(r.Context(), id, confirmParam(r))
	if err != nil {
		writeResponse(w, NewErrorResponseFrom(err))
		return
	}
	if !deleted {
		writeResponse(w, NewErrorResponse(http.StatusPreconditionRequired, explorer.DeleteConfirmation))
		return
	}
	s.countSavedQueries(r.Context())
	writeResponse(w, NewResponse(http.StatusOK, fmt.Sprintf("Deleted saved query %s", id), nil))
}

func (s *Server) handleLoadQuery(w http.ResponseWriter, r *http.Request) {
	location, err := s.explorer.LoadQuery(r.Context(), r.PathValue("id"))
	if err != nil {
		writeResponse(w, NewErrorResponseFrom(err))
		return
	}
	writeResponse(w, NewResponse(http.StatusOK, "Loaded saved query", locationResponse{Location: location}))
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, NewResponse(http.StatusOK, "Available tags", savedquery.Vocabulary()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Health(r.Context()); err != nil {
			writeResponse(w, NewErrorResponse(http.StatusServiceUnavailable, err.Error()))
			return
		}
	}
	writeResponse(w, NewResponse(http.StatusOK, "OK", nil))
}
