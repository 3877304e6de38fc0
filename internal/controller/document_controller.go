package controller

import (
	"errors"
	"io"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/dto"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/serverutils"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxUploadBytes = 20 << 20

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
	auth    fiber.Handler
}

func NewDocumentController(service service.IDocumentService, auth fiber.Handler) IDocumentController {
	return &documentController{service: service, auth: auth}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Get("/documents", c.auth, c.GetAll)
	r.Post("/upload", c.auth, c.Upload)
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetAll(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all documents", res))
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "file exceeds 20MB")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return err
	}

	req := dto.UploadDocumentRequest{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Upload(ctx.UserContext(), userId, &req)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFileType) || errors.Is(err, service.ErrNoExtractableText) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(res)
}
