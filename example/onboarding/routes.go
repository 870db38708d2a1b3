package onboarding

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sicko7947/multipageform"
	"github.com/sicko7947/multipageform/tempdata"
)

// RegisterRoutes registers the onboarding endpoints. The tempdata middleware
// must run before them.
func RegisterRoutes(router fiber.Router, o *Orchestrator) {
	flow := router.Group("/onboarding")

	flow.Post("/identity", o.handleIdentity)
	flow.Post("/interests", o.handleInterests)
	flow.Get("/", o.handleProgress)
	flow.Delete("/", o.handleCancel)
	flow.Get("/exists/:guid", o.handleExists)
}

// handleIdentity saves step 1
func (o *Orchestrator) handleIdentity(c fiber.Ctx) error {
	var input IdentityInput
	if err := c.Bind().JSON(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := o.SaveIdentity(c.Context(), tempdata.FromCtx(c), input)
	if err != nil {
		return o.writeError(c, err)
	}
	return c.JSON(resp)
}

// handleInterests saves step 2
func (o *Orchestrator) handleInterests(c fiber.Ctx) error {
	var input InterestsInput
	if err := c.Bind().JSON(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := o.SaveInterests(c.Context(), tempdata.FromCtx(c), input)
	if err != nil {
		return o.writeError(c, err)
	}
	return c.JSON(resp)
}

// handleProgress returns the stored flow
func (o *Orchestrator) handleProgress(c fiber.Ctx) error {
	resp, err := o.Progress(c.Context(), tempdata.FromCtx(c))
	if err != nil {
		return o.writeError(c, err)
	}
	return c.JSON(resp)
}

// handleCancel clears the flow
func (o *Orchestrator) handleCancel(c fiber.Ctx) error {
	if err := o.Cancel(c.Context(), tempdata.FromCtx(c)); err != nil {
		return o.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleExists checks a guid directly, without temp data
func (o *Orchestrator) handleExists(c fiber.Ctx) error {
	exists, err := o.Exists(c.Context(), c.Params("guid"))
	if err != nil {
		return o.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"exists": exists,
	})
}

func (o *Orchestrator) writeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrStepOutOfOrder):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case multipageform.IsMissingIdentifier(err), multipageform.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No onboarding in progress"})
	default:
		o.logger.Error().Err(err).Str("path", c.Path()).Msg("Onboarding request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal error"})
	}
}
