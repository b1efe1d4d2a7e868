package trips

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/today", func(c *fiber.Ctx) error {
		list, err := svc.ListTodayTrips(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(list)
	})

	r.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			VehicleID string    `json:"vehicle_id"`
			StartAt   time.Time `json:"actual_start_at"`
		}
		if err := c.BodyParser(&body); err != nil || body.VehicleID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "vehicle_id required")
		}
		trip, err := svc.InsertTrip(c.Context(), body.VehicleID, body.StartAt)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(trip)
	})

	r.Post("/:id/complete", func(c *fiber.Ctx) error {
		var body struct {
			ArrivalAt time.Time `json:"actual_arrival_at"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.CompleteTrip(c.Context(), c.Params("id"), body.ArrivalAt); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/target", func(c *fiber.Ctx) error {
		target, err := svc.TodayTarget(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(target)
	})
}
