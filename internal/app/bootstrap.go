package app

import (
	"fmt"
	"strings"

	"job-board/internal/delivery/http/handler"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/delivery/http/routes"
	v1 "job-board/internal/delivery/http/routes/v1"
	"job-board/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// formOverhead is the room left in the body limit for the multipart framing
// and the cover letter next to a maximum-size résumé.
const formOverhead = 256 << 10

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: int(c.Config.Upload.MaxBytes) + formOverhead,
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(c *Container) (*App, func() error, error) {
	if c == nil {
		return nil, nil, fmt.Errorf("nil container")
	}
	app := New(c)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessLog := middleware.NewAccessLogMiddleware(c.Logger)
	errMw := middleware.NewErrorMiddleware(c.Logger)
	app.Use(accessLog.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	cfg := c.Config
	handlers := v1.Handlers{
		Auth: handler.NewAuthHandler(c.Auth, handler.CookieOptions{
			Secure:     cfg.App.CookieSecure,
			AccessTTL:  cfg.JWT.AccessExpiresIn,
			RefreshTTL: cfg.JWT.RefreshExpiresIn,
		}),
		User:         handler.NewUserHandler(c.Users),
		Job:          handler.NewJobHandler(c.Jobs),
		Application:  handler.NewApplicationHandler(c.Applications, c.Resumes.MaxBytes()),
		Resume:       handler.NewResumeHandler(c.Resumes),
		Health:       handler.NewHealthHandler(c.DB, c.Cache),
		Notification: ws.NewHandler(c.Hub, c.Logger),

		AuthMiddleware: middleware.NewAuthMiddleware(c.Identity),
		AuthRateLimit: middleware.NewRateLimitMiddleware(
			c.Cache, "auth", cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow, c.Logger,
		),
	}

	routes.NewRegistry(handlers).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
