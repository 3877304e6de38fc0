package controller

import (
	"github.com/Eatosin/lexpertz-axiom-engine/internal/dto"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IInferenceController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
}

// inferenceController reports the providers the process was started with.
type inferenceController struct {
	info dto.InferenceResponse
	auth fiber.Handler
}

func NewInferenceController(info dto.InferenceResponse, auth fiber.Handler) IInferenceController {
	return &inferenceController{info: info, auth: auth}
}

func (c *inferenceController) RegisterRoutes(r fiber.Router) {
	r.Get("/inference", c.auth, c.Show)
}

func (c *inferenceController) Show(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Active inference configuration", c.info))
}
