package controller

import (
	"time"

	"aficionado-be/internal/pkg/serverutils"
	"aficionado-be/internal/service"
	"aficionado-be/pkg/store"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalsSession = "session"
	SessionHeader = "X-Session-Id"
)

// SessionResolver attaches the caller's session to the request, starting one
// when the cookie is missing, stale or belongs to someone else.
type SessionResolver struct {
	assistant  service.IAssistantService
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewSessionResolver(assistant service.IAssistantService, cookieName string, ttl time.Duration, secure bool) *SessionResolver {
	return &SessionResolver{
		assistant:  assistant,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Middleware must run after JwtMiddleware.
func (r *SessionResolver) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		username := serverutils.Username(ctx)

		sessionID := ctx.Get(SessionHeader)
		if sessionID == "" {
			sessionID = ctx.Cookies(r.cookieName)
		}

		session, err := r.assistant.Get(ctx.Context(), username, sessionID)
		if err != nil {
			return err
		}
		if session.ID != sessionID {
			r.setCookie(ctx, session.ID)
		}
		ctx.Set(SessionHeader, session.ID)

		ctx.Locals(LocalsSession, session)
		return ctx.Next()
	}
}

func (r *SessionResolver) setCookie(ctx *fiber.Ctx, sessionID string) {
	ctx.Cookie(&fiber.Cookie{
		Name:     r.cookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  time.Now().Add(r.ttl),
		HTTPOnly: true,
		Secure:   r.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (r *SessionResolver) ClearCookie(ctx *fiber.Ctx) {
	ctx.ClearCookie(r.cookieName)
}

// CurrentSession returns the session attached by the middleware.
func CurrentSession(ctx *fiber.Ctx) *store.Session {
	session, _ := ctx.Locals(LocalsSession).(*store.Session)
	return session
}
