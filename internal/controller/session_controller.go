package controller

import (
	"fmt"

	"aficionado-be/internal/dto"
	"aficionado-be/internal/pkg/serverutils"
	"aficionado-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Show(ctx *fiber.Ctx) error
	SetQuestion(ctx *fiber.Ctx) error
	PickSuggestion(ctx *fiber.Ctx) error
	Submit(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
	End(ctx *fiber.Ctx) error
}

type sessionController struct {
	service  service.IAssistantService
	sessions *SessionResolver
}

func NewSessionController(service service.IAssistantService, sessions *SessionResolver) ISessionController {
	return &sessionController{service: service, sessions: sessions}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/session/v1", jwtMiddleware, c.sessions.Middleware())
	h.Get("", c.Show)
	h.Put("/question", c.SetQuestion)
	h.Post("/suggestion", c.PickSuggestion)
	h.Post("/submit", c.Submit)
	h.Post("/save", c.Save)
	h.Get("/download", c.Download)
	h.Delete("", c.End)
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)
	return ctx.JSON(serverutils.SuccessResponse("Success get session", dto.NewSessionResponse(session)))
}

func (c *sessionController) SetQuestion(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	var req dto.SetQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.SetQuestion(ctx.Context(), session, req.Question); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success set question", dto.NewSessionResponse(session)))
}

func (c *sessionController) PickSuggestion(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	var req dto.PickSuggestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.PickSuggestion(ctx.Context(), session, *req.Index); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success pick suggestion", dto.NewSessionResponse(session)))
}

func (c *sessionController) Submit(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	var req dto.SubmitRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	task := req.Task
	if task == "" {
		task = session.Question
	}

	if _, err := c.service.Submit(ctx.Context(), session, task); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success submit task", dto.NewSessionResponse(session)))
}

func (c *sessionController) Save(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	name, err := c.service.SaveResponse(ctx.Context(), session)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save response", dto.SaveResponseResponse{
		Filename:       name,
		WorkspaceFiles: session.Files().Names(),
	}))
}

func (c *sessionController) Download(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	name, body, err := c.service.Download(session)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return ctx.Send(body)
}

func (c *sessionController) End(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	if err := c.service.End(ctx.Context(), session.ID); err != nil {
		return err
	}
	c.sessions.ClearCookie(ctx)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success end session", nil))
}
