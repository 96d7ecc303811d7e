package controller

import (
	"content-advisor-be/internal/dto"
	"content-advisor-be/internal/pkg/serverutils"
	"content-advisor-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdvisoryController interface {
	RegisterRoutes(r fiber.Router)
	SubmitQuery(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type advisoryController struct {
	advisoryService service.IAdvisoryService
}

func NewAdvisoryController(advisoryService service.IAdvisoryService) IAdvisoryController {
	return &advisoryController{
		advisoryService: advisoryService,
	}
}

func (c *advisoryController) RegisterRoutes(r fiber.Router) {
	// Health stays open for load balancer probes
	r.Get("/health", c.Health)

	h := r.Group("/advisory/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("query", c.SubmitQuery)
	h.Get("sessions/:id/history", c.GetHistory)
	h.Delete("sessions/:id", c.DeleteSession)
	h.Get("stats", c.Stats)
}

func (c *advisoryController) SubmitQuery(ctx *fiber.Ctx) error {
	tenantIdStr, _ := ctx.Locals("tenant_id").(string)
	tenantId, err := uuid.Parse(tenantIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid tenant claim")
	}

	var req dto.SubmitQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.advisoryService.SubmitQuery(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit query", res))
}

func (c *advisoryController) GetHistory(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	res, err := c.advisoryService.GetHistory(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session history", res))
}

func (c *advisoryController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	if err := c.advisoryService.DeleteSession(ctx.Context(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *advisoryController) Stats(ctx *fiber.Ctx) error {
	res, err := c.advisoryService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session stats", res))
}

func (c *advisoryController) Health(ctx *fiber.Ctx) error {
	res := c.advisoryService.Health(ctx.Context())

	status := fiber.StatusOK
	if res.Status == "error" {
		status = fiber.StatusServiceUnavailable
	}
	return ctx.Status(status).JSON(res)
}
