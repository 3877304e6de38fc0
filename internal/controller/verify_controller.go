package controller

import (
	"errors"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/dto"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/serverutils"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/service"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/loop"

	"github.com/gofiber/fiber/v2"
)

type IVerifyController interface {
	RegisterRoutes(r fiber.Router)
	Verify(ctx *fiber.Ctx) error
}

type verifyController struct {
	service service.IVerifyService
	auth    fiber.Handler
}

func NewVerifyController(service service.IVerifyService, auth fiber.Handler) IVerifyController {
	return &verifyController{service: service, auth: auth}
}

func (c *verifyController) RegisterRoutes(r fiber.Router) {
	r.Post("/verify", c.auth, c.Verify)
}

func (c *verifyController) Verify(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.VerifyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Verify(ctx.UserContext(), userId, &req)
	if err != nil {
		switch {
		case errors.Is(err, loop.ErrMissingTenant):
			return fiber.NewError(fiber.StatusUnauthorized, "Identity Handshake Failed")
		case errors.Is(err, loop.ErrEmptyQuestion):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(res)
}
