package serverutils

import (
	"errors"
	"strings"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/draft"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

type ErrorResponse struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}

// NewErrorHandler maps errors returned by handlers to a {"detail": ...} body.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse{Detail: fiberErr.Message})
		}

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make(map[string]string, len(validationErrs))
			for _, fe := range validationErrs {
				fields[strings.ToLower(fe.Field())] = fe.Tag()
			}
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Detail: "validation failed", Fields: fields})
		}

		var genErr *draft.GenerationError
		if errors.As(err, &genErr) {
			log.Error("http", "Draft generation failed", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Detail: err.Error()})
		}

		log.Error("http", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Detail: "internal server error"})
	}
}
