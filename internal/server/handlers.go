package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/permission"
	"github.com/UnknownOlympus/pinpoint/internal/repository"
	"github.com/UnknownOlympus/pinpoint/internal/service"
	"github.com/UnknownOlympus/pinpoint/internal/viewport"
)

const maxPanSteps = 1000

type errorResponse struct {
	Error string `json:"error"`
}

type panRequest struct {
	Path []models.Region `json:"path"`
}

func (s *Server) handleState(writer http.ResponseWriter, _ *http.Request) {
	s.writeJSON(writer, http.StatusOK, s.deps.Viewport.Snapshot())
}

func (s *Server) handleCenter(writer http.ResponseWriter, req *http.Request) {
	err := s.deps.Viewport.CenterOnDevice(req.Context())
	switch {
	case err == nil:
		s.writeJSON(writer, http.StatusOK, s.deps.Viewport.Snapshot())
	case errors.Is(err, permission.ErrPermissionDenied):
		s.writeError(writer, http.StatusForbidden, err)
	case errors.Is(err, permission.ErrPositionUnavailable):
		s.writeError(writer, http.StatusServiceUnavailable, err)
	case errors.Is(err, viewport.ErrClosed):
		s.writeError(writer, http.StatusGone, err)
	default:
		s.writeError(writer, http.StatusInternalServerError, err)
	}
}

func (s *Server) handlePan(writer http.ResponseWriter, req *http.Request) {
	var body panRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		s.writeError(writer, http.StatusBadRequest, err)
		return
	}
	if len(body.Path) == 0 || len(body.Path) > maxPanSteps {
		s.writeError(writer, http.StatusBadRequest, errors.New("path must hold between 1 and 1000 regions"))
		return
	}
	for _, region := range body.Path {
		if err := region.Validate(); err != nil {
			s.writeError(writer, http.StatusBadRequest, err)
			return
		}
	}

	s.deps.Map.Pan(body.Path...)
	s.writeJSON(writer, http.StatusAccepted, s.deps.Viewport.Snapshot())
}

func (s *Server) handleSelection(writer http.ResponseWriter, req *http.Request) {
	var sel models.Selection
	if err := json.NewDecoder(req.Body).Decode(&sel); err != nil {
		s.writeError(writer, http.StatusBadRequest, err)
		return
	}
	if err := sel.Coordinates().Validate(); err != nil {
		s.writeError(writer, http.StatusBadRequest, err)
		return
	}

	// The search screen hands the result over through the bridge; the
	// location screen picks it up on its next render.
	s.deps.Selection.Deliver(req.Context(), sel)
	if _, err := s.deps.Viewport.ConsumeSelection(req.Context()); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, viewport.ErrClosed) {
			status = http.StatusGone
		}
		s.writeError(writer, status, err)
		return
	}

	s.writeJSON(writer, http.StatusOK, s.deps.Viewport.Snapshot())
}

func (s *Server) handleDevicePosition(writer http.ResponseWriter, req *http.Request) {
	if s.deps.Locator == nil {
		s.writeError(writer, http.StatusNotFound, errors.New("device positions are not accepted"))
		return
	}

	var coords models.Coordinates
	if err := json.NewDecoder(req.Body).Decode(&coords); err != nil {
		s.writeError(writer, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Locator.Report(req.Context(), coords); err != nil {
		s.writeError(writer, http.StatusBadRequest, err)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

type permissionRequest struct {
	Granted *bool `json:"granted"`
}

func (s *Server) handleDevicePermission(writer http.ResponseWriter, req *http.Request) {
	if s.deps.Locator == nil {
		s.writeError(writer, http.StatusNotFound, errors.New("device permission is not configurable"))
		return
	}

	var body permissionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		s.writeError(writer, http.StatusBadRequest, err)
		return
	}
	if body.Granted == nil {
		s.writeError(writer, http.StatusBadRequest, errors.New("granted is required"))
		return
	}

	s.deps.Locator.SetPermission(*body.Granted)
	s.log.InfoContext(req.Context(), "Device location permission changed", "granted", *body.Granted)
	writer.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfirm(writer http.ResponseWriter, req *http.Request) {
	saved, err := s.deps.Confirmer.Confirm(req.Context(), s.deps.Viewport)
	switch {
	case err == nil:
		s.writeJSON(writer, http.StatusCreated, saved)
	case errors.Is(err, service.ErrNoAddress):
		s.writeError(writer, http.StatusConflict, err)
	default:
		s.log.ErrorContext(req.Context(), "Failed to confirm location", "error", err)
		s.writeError(writer, http.StatusInternalServerError, errors.New("failed to confirm location"))
	}
}

func (s *Server) handleRecent(writer http.ResponseWriter, req *http.Request) {
	limit := 0
	if raw := req.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > repository.MaxRecentLimit {
			s.writeError(writer, http.StatusBadRequest,
				fmt.Errorf("limit must be an integer between 0 and %d", repository.MaxRecentLimit))
			return
		}
		limit = parsed
	}

	locations, err := s.deps.Confirmer.Recent(req.Context(), limit)
	if err != nil {
		s.log.ErrorContext(req.Context(), "Failed to list recent locations", "error", err)
		s.writeError(writer, http.StatusInternalServerError, errors.New("failed to list recent locations"))
		return
	}

	s.writeJSON(writer, http.StatusOK, locations)
}

func (s *Server) handleHealth(writer http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	s.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}
	writer.WriteHeader(status)
	if _, err := writer.Write([]byte(body)); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}

	s.log.DebugContext(ctx, "Health checks completed", "status", status)
}

func (s *Server) writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		s.log.Error("failed to write reply", "error", err)
	}
}

func (s *Server) writeError(writer http.ResponseWriter, status int, err error) {
	s.writeJSON(writer, status, errorResponse{Error: err.Error()})
}
