package api

import (
	"context"
	"errors"
	"time"

	"github.com/CristiGvl/picoCPUFreq/internal/cpufreq"
	"github.com/CristiGvl/picoCPUFreq/internal/platform"
	"github.com/CristiGvl/picoCPUFreq/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type beginRequest struct {
	Note string `json:"note" validate:"max=128"`
}

type reportsQuery struct {
	Limit int `query:"limit" validate:"min=0,max=500"`
}

type coreResult struct {
	CoreID   int                      `json:"core_id"`
	Deltas   []cpufreq.FrequencyDelta `json:"deltas,omitempty"`
	Negative []string                 `json:"negative,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

type endResponse struct {
	SessionID  uuid.UUID    `json:"session_id"`
	Note       string       `json:"note,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	EndedAt    time.Time    `json:"ended_at"`
	ReportPath string       `json:"report_path"`
	Cores      []coreResult `json:"cores"`
}

func newEndResponse(r *session.Result) endResponse {
	resp := endResponse{
		SessionID:  r.SessionID,
		Note:       r.Note,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
		ReportPath: r.ReportPath,
		Cores:      make([]coreResult, 0, len(r.Deltas)),
	}
	for _, d := range r.Deltas {
		cr := coreResult{CoreID: d.CoreID, Deltas: d.Deltas, Negative: d.Negative}
		if d.Err != nil {
			cr.Error = d.Err.Error()
		}
		resp.Cores = append(resp.Cores, cr)
	}
	return resp
}

// statusFor maps session errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, cpufreq.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, cpufreq.ErrCollection), errors.Is(err, cpufreq.ErrTimeout):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Session endpoints
func (s *Server) beginSession(c *fiber.Ctx) error {
	var req beginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
	}
	if fields := validateStruct(req); fields != nil {
		return c.Status(422).JSON(fiber.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	sess, err := s.sessions.Begin(ctx, req.Note)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(sess)
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	return c.JSON(s.sessions.Active())
}

func (s *Server) endSession(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid session ID"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	result, err := s.sessions.End(ctx, id)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	if result == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.JSON(newEndResponse(result))
}

func (s *Server) discardSession(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid session ID"})
	}

	if !s.sessions.Discard(id) {
		return c.Status(404).JSON(fiber.Map{"error": session.ErrNotFound.Error()})
	}

	return c.JSON(fiber.Map{"status": "discarded"})
}

// Snapshot endpoint
func (s *Server) getSnapshot(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), handlerTimeout)
	defer cancel()

	snap, err := s.sessions.Profiler().Snapshot(ctx)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(snap)
}

// CPU endpoint
func (s *Server) getCPU(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	info, err := s.cpuReader.GetInfo(ctx)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(info)
}

// Reports endpoint
func (s *Server) getReports(c *fiber.Ctx) error {
	if s.reports == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "report ledger disabled"})
	}

	var q reportsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid query"})
	}
	if fields := validateStruct(q); fields != nil {
		return c.Status(422).JSON(fiber.Map{"error": "validation failed", "fields": fields})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	entries, err := s.reports.List(ctx, q.Limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(entries)
}

// Health check endpoint
func (s *Server) healthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	model := "unknown"
	if info, err := s.cpuReader.GetInfo(ctx); err == nil && info.Model != "" {
		model = info.Model
	}

	return c.JSON(fiber.Map{
		"status":          "ok",
		"platform":        platform.GetOS(),
		"cores":           s.sessions.Profiler().CoreCount(ctx),
		"cpu_model":       model,
		"active_sessions": len(s.sessions.Active()),
		"timestamp":       time.Now().Unix(),
	})
}
