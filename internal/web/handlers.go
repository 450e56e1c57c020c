// Package web serves the server-rendered assistant page and its form routes.
package web

import (
	"fmt"
	"strconv"

	"aficionado-be/internal/controller"
	"aficionado-be/internal/pkg/apperror"
	"aficionado-be/internal/pkg/logger"
	"aficionado-be/internal/pkg/serverutils"
	"aficionado-be/internal/service"
	"aficionado-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

type IPageController interface {
	RegisterRoutes(app fiber.Router)
}

type pageController struct {
	assistant  service.IAssistantService
	workspace  service.IWorkspaceService
	sessions   *controller.SessionResolver
	renderer   *Renderer
	jwtSecret  string
	reserved   string
	extensions []string
	logger     logger.ILogger
}

func NewPageController(
	assistant service.IAssistantService,
	workspace service.IWorkspaceService,
	sessions *controller.SessionResolver,
	renderer *Renderer,
	jwtSecret string,
	examplesPrefix string,
	extensions []string,
	log logger.ILogger,
) IPageController {
	return &pageController{
		assistant:  assistant,
		workspace:  workspace,
		sessions:   sessions,
		renderer:   renderer,
		jwtSecret:  jwtSecret,
		reserved:   examplesPrefix,
		extensions: extensions,
		logger:     log,
	}
}

func (c *pageController) RegisterRoutes(app fiber.Router) {
	app.Get("/", c.requireIdentity, c.sessions.Middleware(), c.Show)

	ui := app.Group("/ui", c.requireIdentity, c.sessions.Middleware())
	ui.Post("/question", c.SetQuestion)
	ui.Post("/suggestion/:index", c.PickSuggestion)
	ui.Post("/submit", c.Submit)
	ui.Post("/save", c.Save)
	ui.Get("/download", c.Download)
	ui.Post("/files", c.Upload)
	ui.Post("/files/delete", c.DeleteAll)
	ui.Post("/examples/clone", c.CloneExamples)
	ui.Post("/refresh", c.Refresh)
	ui.Post("/end", c.End)
}

// requireIdentity stops before anything else is rendered when no verified
// identity is present.
func (c *pageController) requireIdentity(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseIdentity(ctx, c.jwtSecret, c.reserved)
	if err != nil {
		return c.renderer.render(ctx, fiber.StatusUnauthorized, "unauthenticated", PageData{Title: "Aficionado"})
	}
	ctx.Locals(serverutils.LocalsUsername, id.Username)
	ctx.Locals(serverutils.LocalsEmail, id.Email)
	return ctx.Next()
}

func (c *pageController) Show(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	return c.renderer.render(ctx, fiber.StatusOK, "assistant", c.pageData(session))
}

func (c *pageController) pageData(session *store.Session) PageData {
	choices := make([]Choice, len(session.Choices))
	for i, text := range session.Choices {
		choices[i] = Choice{Index: i, Text: text}
	}

	names := session.Files().Names()
	files := make([]FileEntry, len(names))
	for i, name := range names {
		files[i] = FileEntry{Emoji: animalFor(session.ID, name), Name: name}
	}

	data := PageData{
		Title:       "Aficionado",
		Username:    session.Username,
		Question:    session.Question,
		Choices:     choices,
		Files:       files,
		HasResponse: session.Response != "",
		CanSave:     session.SaveState == store.SaveResponseDisplayed,
		SavedAs:     session.SavedAs,
		Error:       session.LastError,
		Accept:      acceptAttr(c.extensions),
	}
	if data.HasResponse {
		data.ResponseHTML = c.renderer.Markdown(session.Response)
	}
	return data
}

// back returns to the page. Failures the service did not already record on
// the session are recorded here so they show up inline.
func (c *pageController) back(ctx *fiber.Ctx, session *store.Session, err error) error {
	if err != nil {
		appErr := apperror.From(err)
		recorded := session.LastError != nil && session.LastError.Code == string(appErr.Code)
		if !recorded {
			if rerr := c.assistant.RecordError(ctx.Context(), session, err); rerr != nil {
				return rerr
			}
		}
		c.logger.Warn("WEB", "Page action failed", map[string]interface{}{
			"path":     ctx.Path(),
			"username": session.Username,
			"code":     string(appErr.Code),
		})
	}
	return ctx.Redirect("/", fiber.StatusSeeOther)
}

func (c *pageController) SetQuestion(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	return c.back(ctx, session, c.assistant.SetQuestion(ctx.Context(), session, ctx.FormValue("question")))
}

func (c *pageController) PickSuggestion(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	index, err := strconv.Atoi(ctx.Params("index"))
	if err != nil {
		return c.back(ctx, session, apperror.NewValidation("invalid suggestion"))
	}
	return c.back(ctx, session, c.assistant.PickSuggestion(ctx.Context(), session, index))
}

func (c *pageController) Submit(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	_, err := c.assistant.Submit(ctx.Context(), session, ctx.FormValue("task"))
	return c.back(ctx, session, err)
}

func (c *pageController) Save(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	_, err := c.assistant.SaveResponse(ctx.Context(), session)
	return c.back(ctx, session, err)
}

func (c *pageController) Download(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	name, body, err := c.assistant.Download(session)
	if err != nil {
		return c.back(ctx, session, err)
	}
	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return ctx.Send(body)
}

func (c *pageController) Upload(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	form, err := ctx.MultipartForm()
	if err != nil {
		return c.back(ctx, session, apperror.NewValidation("no files selected"))
	}
	_, err = c.workspace.Upload(ctx.Context(), session, form.File["files"])
	return c.back(ctx, session, err)
}

func (c *pageController) DeleteAll(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	_, err := c.workspace.DeleteAll(ctx.Context(), session)
	return c.back(ctx, session, err)
}

func (c *pageController) CloneExamples(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	_, err := c.workspace.CloneExamples(ctx.Context(), session)
	return c.back(ctx, session, err)
}

func (c *pageController) Refresh(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	_, err := c.workspace.Refresh(ctx.Context(), session)
	return c.back(ctx, session, err)
}

func (c *pageController) End(ctx *fiber.Ctx) error {
	session := controller.CurrentSession(ctx)
	if err := c.assistant.End(ctx.Context(), session.ID); err != nil {
		return err
	}
	c.sessions.ClearCookie(ctx)
	return ctx.Redirect("/", fiber.StatusSeeOther)
}
