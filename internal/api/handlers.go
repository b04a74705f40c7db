package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wildguard/wildguard-go/internal/errors"
	"github.com/wildguard/wildguard-go/internal/report"
	"github.com/wildguard/wildguard-go/internal/threat"
)

// assessmentResponse is the body returned for an ingested sensor reading.
// Alert is null when the reading stayed below the escalation threshold.
type assessmentResponse struct {
	Assessment threat.Assessment `json:"assessment"`
	Alert      any               `json:"alert"`
}

type verificationRequest struct {
	Status     string `json:"status"`
	VerifierID string `json:"verifierId"`
	Notes      string `json:"notes,omitempty"`
}

// postReading ingests one sensor reading and runs the assessment pipeline.
func (s *Server) postReading(c echo.Context) error {
	var reading threat.Reading
	if err := c.Bind(&reading); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reading payload")
	}
	if reading.SensorID == "" || reading.Category == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sensorId and category are required")
	}
	if reading.CapturedAt.IsZero() {
		reading.CapturedAt = time.Now()
	}

	assessment, alert, err := s.orchestrator.ProcessReading(c.Request().Context(), &reading, time.Now())
	if err != nil {
		s.log.Error("reading ingestion failed", "sensor", reading.SensorID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process reading")
	}

	resp := assessmentResponse{Assessment: assessment}
	if alert != nil {
		resp.Alert = alert
	}
	return c.JSON(http.StatusCreated, resp)
}

// postReport records a community incident report.
func (s *Server) postReport(c echo.Context) error {
	var req report.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report payload")
	}

	incident, err := s.reports.Submit(c.Request().Context(), &req, time.Now())
	if err != nil {
		if errors.GetCategory(err) == errors.CategoryValidation {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		s.log.Error("report intake failed", "type", req.Type, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record report")
	}
	return c.JSON(http.StatusCreated, incident)
}

// postVerification records the verification outcome for an incident.
func (s *Server) postVerification(c echo.Context) error {
	var req verificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid verification payload")
	}

	err := s.reports.Verify(c.Param("id"), req.Status, req.VerifierID, req.Notes)
	if err != nil {
		switch errors.GetCategory(err) {
		case errors.CategoryValidation:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.CategoryNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "incident not found")
		}
		s.log.Error("verification update failed", "incident", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update verification")
	}
	return c.NoContent(http.StatusNoContent)
}

// getCurrentThreats returns the active predictions around a coordinate.
func (s *Server) getCurrentThreats(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lat is required")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "lng is required")
	}
	radius := s.settings.Engine.QueryRadiusDeg
	if raw := c.QueryParam("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "radius must be a non-negative number")
		}
	}

	predictions, err := s.predictions.CurrentThreats(lat, lng, radius, time.Now())
	if err != nil {
		s.log.Error("current threats query failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to query threats")
	}
	return c.JSON(http.StatusOK, predictions)
}

// getDailySummary returns the aggregated threat picture for today.
func (s *Server) getDailySummary(c echo.Context) error {
	summary, err := s.predictions.DailySummary(time.Now())
	if err != nil {
		s.log.Error("daily summary query failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build summary")
	}
	return c.JSON(http.StatusOK, summary)
}
