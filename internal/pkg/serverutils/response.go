package serverutils

import (
	"errors"
	"strings"

	"aficionado-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	// Error is set only for failures and carries the machine-readable code.
	Error *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Success: true,
		Code:    fiber.StatusOK,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// AppErrorResponse renders a typed error with its code in the envelope.
func AppErrorResponse(err *apperror.AppError) BaseResponse[any] {
	res := ErrorResponse(err.Status, err.Message)
	res.Error = &ErrorBody{Code: string(err.Code), Details: err.Details}
	return res
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and returns a VALIDATION_FAILED error.
func ValidateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
			}
			appErr := apperror.NewValidation("invalid request: " + strings.Join(fields, ", "))
			appErr.Details = map[string]any{"fields": fields}
			return appErr
		}
		return apperror.NewValidation(err.Error())
	}
	return nil
}

// ErrorHandler is installed as fiber's app-level ErrorHandler.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	appErr := apperror.From(err)
	message := appErr.Message
	if appErr.Code == apperror.CodeInternal && appErr.Err != nil {
		message = appErr.Err.Error()
	}
	res := AppErrorResponse(appErr)
	res.Message = message
	return ctx.Status(appErr.Status).JSON(res)
}

// ErrorHandlerMiddleware converts handler errors into the response envelope before
// other middleware (tracing, logging) sees the final status.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ErrorHandler(ctx, err)
	}
}
