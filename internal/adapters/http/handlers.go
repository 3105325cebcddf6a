package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jobrunner/skyline/internal/application"
	"github.com/jobrunner/skyline/internal/domain"
)

// QueryParams represents the query parameters for a coverage query.
type QueryParams struct {
	RA         float64 `json:"ra"`
	Dec        float64 `json:"dec"`
	MaxResults int     `json:"max_results,omitempty"`
}

// mosaicRequestBody is the JSON body for a mosaic assembly request.
type mosaicRequestBody struct {
	ObservationIDs []string `json:"observation_ids,omitempty"`
	Tolerant       *bool    `json:"tolerant,omitempty"`
}

// handleQuery handles coverage queries across all observations.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseQueryParams(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := domain.CoverageRequest{
		Coord:      domain.NewSkyCoord(params.RA, params.Dec),
		MaxResults: params.MaxResults,
	}

	response, err := s.coverageService.QueryPoint(r.Context(), req)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.formatCoverageResponse(response))
}

// handleQueryObservation handles coverage queries against one observation.
func (s *Server) handleQueryObservation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	observationID := vars["observationId"]

	params, err := s.parseQueryParams(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := domain.CoverageRequest{
		Coord: domain.NewSkyCoord(params.RA, params.Dec),
	}

	hit, err := s.coverageService.QueryPointInObservation(r.Context(), observationID, req)
	if err != nil {
		s.handleQueryError(w, err)
		return
	}

	result := map[string]interface{}{
		"observation_id": observationID,
		"coordinate":     s.formatCoord(req.Coord),
		"covered":        hit != nil,
	}
	if hit != nil {
		result["hit"] = s.formatHit(hit)
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":              boolToStatus(details.Healthy),
		"ready":               details.Ready,
		"observations_loaded": details.ObservationsLoaded,
		"observations_ready":  details.ObservationsReady,
		"components":          details.Components,
	})
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleListFootprints returns all registered observations.
func (s *Server) handleListFootprints(w http.ResponseWriter, r *http.Request) {
	observations, err := s.registry.ListObservations(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list observations")
		return
	}

	response := make([]map[string]interface{}, len(observations))
	for i := range observations {
		response[i] = s.formatObservation(&observations[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"observations": response,
		"count":        len(observations),
	})
}

// handleGetFootprint returns a specific observation.
func (s *Server) handleGetFootprint(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	observationID := vars["observationId"]

	obs, err := s.registry.GetObservation(r.Context(), observationID)
	if err != nil {
		if errors.Is(err, domain.ErrObservationNotFound) {
			s.writeError(w, http.StatusNotFound, "Observation not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to get observation")
		return
	}

	s.writeJSON(w, http.StatusOK, s.formatObservation(obs))
}

// handleGetMembers returns the footprint members of a specific observation.
func (s *Server) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	observationID := vars["observationId"]

	obs, err := s.registry.GetObservation(r.Context(), observationID)
	if err != nil {
		if errors.Is(err, domain.ErrObservationNotFound) {
			s.writeError(w, http.StatusNotFound, "Observation not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to get observation")
		return
	}

	var members []map[string]interface{}
	if obs.Footprint != nil {
		for _, m := range obs.Footprint.Members() {
			members = append(members, map[string]interface{}{
				"source_id": m.SourceID(),
				"selectors": m.Selectors(),
				"area":      m.Polygon().Area(),
			})
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"observation_id": observationID,
		"members":        members,
		"count":          len(members),
	})
}

// handleAssembleMosaic triggers a mosaic assembly run.
func (s *Server) handleAssembleMosaic(w http.ResponseWriter, r *http.Request) {
	var body mosaicRequestBody
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	run, err := s.mosaicService.Assemble(r.Context(), domain.MosaicRequest{
		ObservationIDs: body.ObservationIDs,
		Tolerant:       body.Tolerant,
	})
	if err != nil {
		if errors.Is(err, domain.ErrObservationNotFound) {
			s.writeError(w, http.StatusNotFound, "Requested observations not all ready")
			return
		}
		if domain.IsGeometryError(err) {
			s.writeError(w, http.StatusUnprocessableEntity, "Mosaic assembly failed: "+err.Error())
			return
		}
		s.logger.Error("mosaic assembly failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Mosaic assembly failed")
		return
	}

	s.writeJSON(w, http.StatusCreated, s.formatRun(run))
}

// handleListMosaics returns recorded mosaic runs, newest first.
func (s *Server) handleListMosaics(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	runs, err := s.mosaicService.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list mosaic runs")
		return
	}

	response := make([]map[string]interface{}, len(runs))
	for i := range runs {
		response[i] = s.formatRun(&runs[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  response,
		"count": len(runs),
	})
}

// handleGetMosaic returns a recorded mosaic run by ID.
func (s *Server) handleGetMosaic(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["runId"]

	run, err := s.mosaicService.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrMosaicRunNotFound) {
			s.writeError(w, http.StatusNotFound, "Mosaic run not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to get mosaic run")
		return
	}

	s.writeJSON(w, http.StatusOK, s.formatRun(run))
}

// handleOpenAPI returns the OpenAPI specification.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	spec, err := getOpenAPIJSON()
	if err != nil {
		s.logger.Error("failed to get OpenAPI spec", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load OpenAPI specification")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(spec)
}

// parseQueryParams parses query parameters from the request.
func (s *Server) parseQueryParams(r *http.Request) (*QueryParams, error) {
	params := &QueryParams{}

	q := r.URL.Query()

	ra := q.Get("ra")
	dec := q.Get("dec")
	if ra == "" || dec == "" {
		return nil, errors.New("coordinates required: use ra and dec")
	}

	v, err := strconv.ParseFloat(ra, 64)
	if err != nil {
		return nil, errors.New("invalid ra parameter")
	}
	params.RA = v

	v, err = strconv.ParseFloat(dec, 64)
	if err != nil {
		return nil, errors.New("invalid dec parameter")
	}
	params.Dec = v

	if max := q.Get("max_results"); max != "" {
		n, err := strconv.Atoi(max)
		if err != nil {
			return nil, errors.New("invalid max_results parameter")
		}
		params.MaxResults = n
	}

	return params, nil
}

// formatCoverageResponse formats the coverage response for JSON output.
func (s *Server) formatCoverageResponse(resp *domain.CoverageResponse) map[string]interface{} {
	hits := make([]map[string]interface{}, len(resp.Hits))
	for i := range resp.Hits {
		hits[i] = s.formatHit(&resp.Hits[i])
	}

	return map[string]interface{}{
		"coordinate": s.formatCoord(resp.Coord),
		"hits":       hits,
		"hit_count":  len(hits),
		"scanned":    resp.Scanned,
	}
}

// formatCoord formats a sky coordinate for JSON output.
func (s *Server) formatCoord(coord domain.SkyCoord) map[string]interface{} {
	return map[string]interface{}{
		"ra":  coord.RA,
		"dec": coord.Dec,
	}
}

// formatHit formats a single coverage hit for JSON output.
func (s *Server) formatHit(hit *domain.CoverageHit) map[string]interface{} {
	return map[string]interface{}{
		"observation_id": hit.ObservationID,
		"name":           hit.Name,
		"area_sqdeg":     hit.Area,
		"member_sources": hit.MemberSources,
	}
}

// formatObservation formats an observation for JSON output.
func (s *Server) formatObservation(obs *domain.Observation) map[string]interface{} {
	result := map[string]interface{}{
		"id":          obs.ID,
		"name":        obs.Name,
		"path":        obs.Path,
		"size":        obs.Size,
		"region_kind": obs.RegionKind,
		"ready":       obs.IsReady(),
		"loaded_at":   obs.LoadedAt,
	}
	if obs.Footprint != nil {
		result["area_sqdeg"] = obs.Footprint.Area()
		result["member_count"] = obs.Footprint.MemberCount()
	}
	return result
}

// formatRun formats a mosaic run for JSON output.
func (s *Server) formatRun(run *domain.MosaicRun) map[string]interface{} {
	return map[string]interface{}{
		"id":           run.ID,
		"created_at":   run.CreatedAt,
		"tolerant":     run.Tolerant,
		"included":     run.Included,
		"excluded":     run.Excluded,
		"has_mosaic":   run.HasMosaic(),
		"area_sqdeg":   run.Area,
		"member_count": run.MemberCount,
		"duration_ms":  run.Duration.Milliseconds(),
	}
}

// handleQueryError handles query errors and returns appropriate HTTP status.
func (s *Server) handleQueryError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		s.writeError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	if errors.Is(err, domain.ErrObservationNotFound) {
		s.writeError(w, http.StatusNotFound, "Observation not found")
		return
	}

	if errors.Is(err, domain.ErrNotReady) {
		s.writeError(w, http.StatusConflict, "Observation not ready")
		return
	}

	s.logger.Error("query error", "error", err)
	s.writeError(w, http.StatusInternalServerError, "Query failed")
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}

// handleSync handles the sync trigger endpoint.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncService == nil {
		s.writeError(w, http.StatusNotFound, "Sync service not available")
		return
	}

	result, err := s.syncService.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRateLimited) {
			w.Header().Set("Retry-After", "30")
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Try again in 30 seconds.")
			return
		}
		s.logger.Error("sync failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}
