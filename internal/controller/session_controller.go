package controller

import (
	"errors"

	"incident-reporting-be/internal/dto"
	"incident-reporting-be/internal/pkg/serverutils"
	"incident-reporting-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	ToggleConsent(ctx *fiber.Ctx) error
	ToggleItem(ctx *fiber.Ctx) error
	AddManualEvent(ctx *fiber.Ctx) error
	Stop(ctx *fiber.Ctx) error
	Discard(ctx *fiber.Ctx) error
}

type sessionController struct {
	recordingService service.IRecordingService
}

func NewSessionController(recordingService service.IRecordingService) ISessionController {
	return &sessionController{
		recordingService: recordingService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("start", c.Start)
	h.Get(":id", c.Show)
	h.Post(":id/consent", c.ToggleConsent)
	h.Post(":id/items/toggle", c.ToggleItem)
	h.Post(":id/events", c.AddManualEvent)
	h.Post(":id/stop", c.Stop)
	h.Delete(":id", c.Discard)
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.StartSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.recordingService.Start(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.recordingService.Show(ctx.Context(), userId, ctx.Params("id"))
	if err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) ToggleConsent(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ToggleConsentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.recordingService.ToggleConsent(ctx.Context(), userId, ctx.Params("id"), *req.SpeakerId)
	if err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle consent", res))
}

func (c *sessionController) ToggleItem(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ToggleItemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.recordingService.ToggleItem(ctx.Context(), userId, ctx.Params("id"), req.ItemId)
	if err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success toggle item", res))
}

func (c *sessionController) AddManualEvent(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ManualEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.recordingService.AddManualEvent(ctx.Context(), userId, ctx.Params("id"), &req)
	if err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success add manual event", res))
}

func (c *sessionController) Stop(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	// Body is optional; an empty body means no template.
	var req dto.StopSessionRequest
	_ = ctx.BodyParser(&req)

	res, err := c.recordingService.Stop(ctx.Context(), userId, ctx.Params("id"), &req)
	if err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success finalize session", res))
}

func (c *sessionController) Discard(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	if err := c.recordingService.Discard(ctx.Context(), userId, ctx.Params("id")); err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success discard session", fiber.Map{}))
}

// mapSessionError translates service sentinels into HTTP statuses. A
// finalize attempt without usable speech is a client-state problem, not
// a server failure.
func mapSessionError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoSpeech), errors.Is(err, service.ErrNoConsentedSpeech):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return err
	}
}
