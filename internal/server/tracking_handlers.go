package server

import (
	"errors"
	"log"

	"backend-evolveai/internal/engine"
	"backend-evolveai/internal/segment"
	"backend-evolveai/internal/store"

	"github.com/gofiber/fiber/v2"
)

type startRequest struct {
	SessionID string            `json:"session_id"`
	SportType string            `json:"sport_type"`
	Segments  []segment.Segment `json:"segments"`
}

// RegisterTrackingRoutes exposes the engine's session lifecycle over HTTP.
// workouts may be nil when no database is configured; stop then skips
// persistence and still returns the metrics.
func RegisterTrackingRoutes(r fiber.Router, eng *engine.Engine, workouts *store.Service) {
	r.Post("/start", func(c *fiber.Ctx) error {
		var req startRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.SportType == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sport_type required")
		}
		if err := eng.StartTracking(c.Context(), req.SessionID, req.SportType, req.Segments, nil); err != nil {
			return fiber.NewError(statusForErr(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(eng.GetState())
	})

	r.Post("/countdown", func(c *fiber.Ctx) error {
		if err := eng.BeginCountdown(); err != nil {
			return fiber.NewError(statusForErr(err), err.Error())
		}
		return c.JSON(eng.GetState())
	})

	r.Post("/pause", func(c *fiber.Ctx) error {
		if err := eng.PauseTracking(); err != nil {
			return fiber.NewError(statusForErr(err), err.Error())
		}
		return c.JSON(eng.GetState())
	})

	r.Post("/resume", func(c *fiber.Ctx) error {
		if err := eng.ResumeTracking(); err != nil {
			return fiber.NewError(statusForErr(err), err.Error())
		}
		return c.JSON(eng.GetState())
	})

	r.Post("/stop", func(c *fiber.Ctx) error {
		metrics, err := eng.StopTracking()
		if err != nil {
			return fiber.NewError(statusForErr(err), err.Error())
		}

		resp := fiber.Map{"metrics": metrics}
		if workouts != nil {
			saved, err := workouts.SaveWorkout(c.Context(), metrics)
			if err != nil {
				// the workout is already finalized; surface the metrics anyway
				log.Printf("save workout failed: %v", err)
				resp["save_error"] = err.Error()
			} else {
				resp["workout"] = saved
			}
		}
		return c.JSON(resp)
	})

	r.Post("/discard", func(c *fiber.Ctx) error {
		eng.DiscardTracking()
		return c.JSON(eng.GetState())
	})

	r.Post("/skip", func(c *fiber.Ctx) error {
		if err := eng.SkipToNextSegment(); err != nil {
			return fiber.NewError(statusForErr(err), err.Error())
		}
		return c.JSON(eng.GetState())
	})

	r.Post("/auto-advance", func(c *fiber.Ctx) error {
		enabled, err := eng.ToggleAutoAdvance()
		if err != nil {
			return fiber.NewError(statusForErr(err), err.Error())
		}
		return c.JSON(fiber.Map{"auto_advance": enabled})
	})

	r.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(eng.GetState())
	})

	r.Get("/gps", func(c *fiber.Ctx) error {
		signal, err := eng.CheckGPSAvailability(c.Context())
		if err != nil {
			return fiber.NewError(statusForErr(err), err.Error())
		}
		return c.JSON(signal)
	})
}

// statusForErr maps the engine error taxonomy onto HTTP statuses: illegal
// transitions conflict with current state, availability problems are 503.
func statusForErr(err error) int {
	switch {
	case errors.Is(err, engine.ErrLocationDisabled):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, engine.ErrNoSegments):
		return fiber.StatusBadRequest
	case errors.Is(err, engine.ErrSessionActive),
		errors.Is(err, engine.ErrSessionFinalizing),
		errors.Is(err, engine.ErrNoActiveSession),
		errors.Is(err, engine.ErrNotTracking),
		errors.Is(err, engine.ErrNotPaused):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
