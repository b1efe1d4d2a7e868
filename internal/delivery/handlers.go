package delivery

import (
	"context"

	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/corridor"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/trips"

	"github.com/gofiber/fiber/v2"
)

// RouteDef names a plant-to-site path as an ordered corridor list plus the
// plant anchor the stitcher walks from.
type RouteDef struct {
	ID          string     `json:"id"`
	CorridorIDs []string   `json:"corridor_ids"`
	Anchor      [2]float64 `json:"anchor"`
}

// TargetSource supplies today's pour plan for defaulting a start request.
// *trips.Service satisfies it.
type TargetSource interface {
	TodayTarget(ctx context.Context) (trips.DeliveryTarget, error)
}

type startRequest struct {
	Config
	Routes []RouteDef `json:"routes"`
}

// BuildPaths stitches each route definition against the corridor store.
// Routes that produce no usable geometry are left out.
func BuildPaths(src corridor.GeometrySource, routes []RouteDef) map[string]*corridor.StitchedPath {
	paths := map[string]*corridor.StitchedPath{}
	for _, route := range routes {
		if path := corridor.Stitch(src, route.CorridorIDs, route.Anchor); path != nil {
			paths[route.ID] = path
		}
	}
	return paths
}

func RegisterRoutes(r fiber.Router, session *Session, corridors corridor.GeometrySource, targets TargetSource) {
	r.Post("/start", func(c *fiber.Ctx) error {
		var req startRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(req.Routes) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "routes required")
		}
		if req.PathID == "" {
			req.PathID = req.Routes[0].ID
		}

		if targets != nil && (req.TargetVolumeM3 <= 0 || req.VolumePerTruckM3 <= 0 || req.TrucksPerHour <= 0) {
			target, err := targets.TodayTarget(c.Context())
			if err == nil {
				if req.TargetVolumeM3 <= 0 {
					req.TargetVolumeM3 = target.TargetVolumeM3
				}
				if req.VolumePerTruckM3 <= 0 {
					req.VolumePerTruckM3 = target.VolumePerTruck
				}
				if req.TrucksPerHour <= 0 {
					req.TrucksPerHour = target.TrucksPerHour
				}
				if req.StartTime.IsZero() {
					req.StartTime = target.WorkStart
				}
			}
		}

		paths := BuildPaths(corridors, req.Routes)
		summary, err := session.Start(req.Config, paths)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(summary)
	})

	r.Post("/dispatch", func(c *fiber.Ctx) error {
		var body struct {
			PathID string `json:"path_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.PathID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "path_id required")
		}
		truck := session.Dispatch(body.PathID)
		if truck == nil {
			return fiber.NewError(fiber.StatusConflict, "dispatch not possible")
		}
		return c.Status(fiber.StatusCreated).JSON(truck)
	})

	r.Post("/tick", func(c *fiber.Ctx) error {
		var body struct {
			DtSeconds float64 `json:"dt_seconds"`
		}
		_ = c.BodyParser(&body)
		if body.DtSeconds <= 0 {
			body.DtSeconds = 1
		}
		session.Tick(body.DtSeconds)
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/status", func(c *fiber.Ctx) error {
		status := session.Status()
		if status == nil {
			return fiber.NewError(fiber.StatusNotFound, "no active delivery session")
		}
		return c.JSON(status)
	})

	r.Get("/trucks", func(c *fiber.Ctx) error {
		return c.JSON(session.Trucks())
	})

	r.Get("/records", func(c *fiber.Ctx) error {
		return c.JSON(session.Records())
	})

	r.Post("/stop", func(c *fiber.Ctx) error {
		session.Stop()
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/reset", func(c *fiber.Ctx) error {
		session.Reset()
		return c.SendStatus(fiber.StatusNoContent)
	})
}
