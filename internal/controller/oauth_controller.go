package controller

import (
	"time"

	"aficionado-be/internal/pkg/apperror"
	"aficionado-be/internal/pkg/serverutils"
	"aficionado-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "oauth_state"

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type oauthController struct {
	service  service.IOAuthService
	tokenTTL time.Duration
	secure   bool
}

func NewOAuthController(service service.IOAuthService, tokenTTL time.Duration, secure bool) IOAuthController {
	return &oauthController{service: service, tokenTTL: tokenTTL, secure: secure}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	// e.g., /auth/google
	h := r.Group("/auth")
	h.Post("/logout", c.Logout)
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	url, state, err := c.service.GetLoginURL(ctx.Params("provider"))
	if err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   c.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.Redirect(url, fiber.StatusTemporaryRedirect)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	if code == "" {
		return apperror.NewValidation("missing code")
	}
	if state := ctx.Cookies(oauthStateCookie); state == "" || state != ctx.Query("state") {
		return apperror.NewUnauthorized("invalid oauth state")
	}
	ctx.ClearCookie(oauthStateCookie)

	res, err := c.service.HandleCallback(ctx.Context(), ctx.Params("provider"), code)
	if err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     serverutils.AccessTokenCookie,
		Value:    res.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(c.tokenTTL),
		HTTPOnly: true,
		Secure:   c.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.Redirect("/", fiber.StatusTemporaryRedirect)
}

func (c *oauthController) Logout(ctx *fiber.Ctx) error {
	ctx.ClearCookie(serverutils.AccessTokenCookie)
	return ctx.JSON(serverutils.SuccessResponse[any]("Success logout", nil))
}
