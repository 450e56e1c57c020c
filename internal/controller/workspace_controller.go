package controller

import (
	"aficionado-be/internal/dto"
	"aficionado-be/internal/pkg/apperror"
	"aficionado-be/internal/pkg/serverutils"
	"aficionado-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWorkspaceController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	List(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	DeleteAll(ctx *fiber.Ctx) error
	CloneExamples(ctx *fiber.Ctx) error
}

type workspaceController struct {
	service  service.IWorkspaceService
	sessions *SessionResolver
}

func NewWorkspaceController(service service.IWorkspaceService, sessions *SessionResolver) IWorkspaceController {
	return &workspaceController{service: service, sessions: sessions}
}

func (c *workspaceController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/workspace/v1", jwtMiddleware, c.sessions.Middleware())
	h.Get("", c.List)
	h.Post("/refresh", c.Refresh)
	h.Post("/files", c.Upload)
	h.Delete("/files", c.DeleteAll)
	h.Post("/clone-examples", c.CloneExamples)
}

func (c *workspaceController) List(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)
	files := c.service.List(ctx.Context(), session)
	return ctx.JSON(serverutils.SuccessResponse("Success get workspace files", dto.WorkspaceFilesResponse{Files: files}))
}

// Refresh re-lists storage. With ?async=true the work is queued and the
// cached list is returned immediately.
func (c *workspaceController) Refresh(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	if ctx.QueryBool("async") {
		if err := c.service.QueueRefresh(ctx.Context(), session); err != nil {
			return err
		}
		return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Refresh queued", dto.WorkspaceFilesResponse{
			Files: session.Files().Names(),
		}))
	}

	files, err := c.service.Refresh(ctx.Context(), session)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success refresh workspace", dto.WorkspaceFilesResponse{Files: files}))
}

func (c *workspaceController) Upload(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	form, err := ctx.MultipartForm()
	if err != nil {
		return apperror.NewValidation("expected a multipart form with files")
	}

	res, err := c.service.Upload(ctx.Context(), session, form.File["files"])
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success upload files", res))
}

func (c *workspaceController) DeleteAll(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	res, err := c.service.DeleteAll(ctx.Context(), session)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete workspace files", res))
}

func (c *workspaceController) CloneExamples(ctx *fiber.Ctx) error {
	session := CurrentSession(ctx)

	res, err := c.service.CloneExamples(ctx.Context(), session)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success clone example files", res))
}
