package controller

import (
	"doc-intel-be/internal/dto"
	"doc-intel-be/internal/pkg/serverutils"
	"doc-intel-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	IngestChunks(ctx *fiber.Ctx) error
	IngestText(ctx *fiber.Ctx) error
	DeleteSource(ctx *fiber.Ctx) error
}

type ingestController struct {
	ingestService service.IIngestService
}

func NewIngestController(ingestService service.IIngestService) IIngestController {
	return &ingestController{
		ingestService: ingestService,
	}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingest/v1")
	h.Post("chunks", c.IngestChunks)
	h.Post("text", c.IngestText)
	h.Delete("sources/:source_id", c.DeleteSource)
}

func (c *ingestController) IngestChunks(ctx *fiber.Ctx) error {
	var req dto.IngestChunksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.ingestService.IngestChunks(ctx.Context(), &req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if res.Queued {
		status = fiber.StatusAccepted
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Success ingest chunks", res))
}

func (c *ingestController) IngestText(ctx *fiber.Ctx) error {
	var req dto.IngestTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.ingestService.IngestText(ctx.Context(), &req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if res.Queued {
		status = fiber.StatusAccepted
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Success ingest text", res))
}

func (c *ingestController) DeleteSource(ctx *fiber.Ctx) error {
	sourceId := ctx.Params("source_id")
	projectId := ctx.Query("project_id", "")

	res, err := c.ingestService.DeleteSource(ctx.Context(), projectId, sourceId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete source", res))
}
