package controller

import (
	"content-advisor-be/internal/dto"
	"content-advisor-be/internal/pkg/serverutils"
	"content-advisor-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IContentController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type contentController struct {
	contentService service.IContentService
}

func NewContentController(contentService service.IContentService) IContentController {
	return &contentController{
		contentService: contentService,
	}
}

func (c *contentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/content/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func tenantFromLocals(ctx *fiber.Ctx) (uuid.UUID, error) {
	tenantIdStr, _ := ctx.Locals("tenant_id").(string)
	tenantId, err := uuid.Parse(tenantIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid tenant claim")
	}
	return tenantId, nil
}

func (c *contentController) Create(ctx *fiber.Ctx) error {
	tenantId, err := tenantFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateContentRecordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contentService.Create(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create content record", res))
}

func (c *contentController) Show(ctx *fiber.Ctx) error {
	tenantId, err := tenantFromLocals(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	res, err := c.contentService.Get(ctx.Context(), tenantId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show content record", res))
}

func (c *contentController) Update(ctx *fiber.Ctx) error {
	tenantId, err := tenantFromLocals(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	var req dto.UpdateContentRecordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contentService.Update(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update content record", res))
}

func (c *contentController) Delete(ctx *fiber.Ctx) error {
	tenantId, err := tenantFromLocals(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	if err := c.contentService.Delete(ctx.Context(), tenantId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete content record", nil))
}

func (c *contentController) List(ctx *fiber.Ctx) error {
	tenantId, err := tenantFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.ListContentRecordsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.contentService.List(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list content records", res))
}
