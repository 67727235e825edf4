package controller

import (
	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/pkg/serverutils"
	"ai-shopassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	Upsert(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Similar(ctx *fiber.Ctx) error
	FeedSync(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
}

type catalogController struct {
	catalogService service.ICatalogService
}

func NewCatalogController(catalogService service.ICatalogService) ICatalogController {
	return &catalogController{
		catalogService: catalogService,
	}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Post("feed/sync", c.FeedSync)
	h.Post("reindex", c.Reindex)
	h.Post("", c.Upsert)
	h.Get("", c.List)
	h.Get(":id/similar", c.Similar)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func (c *catalogController) Upsert(ctx *fiber.Ctx) error {
	var req dto.UpsertProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.catalogService.Upsert(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upsert product", res))
}

func (c *catalogController) Show(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.catalogService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show product", res))
}

func (c *catalogController) List(ctx *fiber.Ctx) error {
	filter := service.CatalogFilter{
		Category: ctx.Query("category", ""),
		Gender:   ctx.Query("gender", ""),
		Brand:    ctx.Query("brand", ""),
		Limit:    ctx.QueryInt("limit", 0),
		Offset:   ctx.QueryInt("offset", 0),
	}

	res, err := c.catalogService.List(ctx.Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list products", res))
}

func (c *catalogController) Delete(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	if err := c.catalogService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete product", nil))
}

func (c *catalogController) Similar(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	limit := ctx.QueryInt("limit", 0)

	res, err := c.catalogService.Similar(ctx.Context(), id, limit)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list similar products", res))
}

func (c *catalogController) FeedSync(ctx *fiber.Ctx) error {
	var req dto.FeedSyncRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.catalogService.FeedSync(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success sync product feed", res))
}

func (c *catalogController) Reindex(ctx *fiber.Ctx) error {
	res, err := c.catalogService.Reindex(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rebuild search index", res))
}
