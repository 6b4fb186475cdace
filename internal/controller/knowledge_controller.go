package controller

import (
	"github.com/gofiber/fiber/v2"

	"cara-compliance-be/internal/dto"
	"cara-compliance-be/internal/pkg/serverutils"
	"cara-compliance-be/internal/service"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Add(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Purge(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Use(serverutils.AdminOnly)
	h.Post("", c.Add)
	h.Get("", c.List)
	h.Delete("module", c.Purge)
}

func (c *knowledgeController) Add(ctx *fiber.Ctx) error {
	var req dto.AddKnowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Add(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Material accepted", res))
}

func (c *knowledgeController) List(ctx *fiber.Ctx) error {
	moduleTag := ctx.Query("module_tag")
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.knowledgeService.List(ctx.Context(), moduleTag, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list knowledge", res))
}

func (c *knowledgeController) Purge(ctx *fiber.Ctx) error {
	var req dto.PurgeKnowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.knowledgeService.Purge(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success purge module knowledge", nil))
}
