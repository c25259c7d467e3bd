package handler

import (
	"time"

	"job-board/internal/delivery/http/dto"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/domain/user"
	"job-board/internal/pkg/response"
	"job-board/internal/usecase"
	ucauth "job-board/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
)

type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthHandler struct {
	uc      usecase.AuthUsecase
	cookies CookieOptions
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AdminCode string `json:"admin_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func NewAuthHandler(uc usecase.AuthUsecase, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{uc: uc, cookies: cookies}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/refresh", h.Refresh)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	usr, sess, err := h.uc.Register(c.Context(), ucauth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Role:      req.Role,
		AdminCode: req.AdminCode,
	})
	if err != nil {
		return middleware.FromDomain(err)
	}

	return h.respondSession(c, fiber.StatusCreated, &usr, sess)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	usr, sess, err := h.uc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return middleware.FromDomain(err)
	}

	return h.respondSession(c, fiber.StatusOK, &usr, sess)
}

// Logout always clears the cookies, even when the token was already dead.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	tok, _ := middleware.SessionToken(c)
	if tok == "" {
		tok = c.Cookies(middleware.RefreshCookie)
	}

	h.clearCookies(c)
	if err := h.uc.Logout(c.Context(), tok); err != nil {
		return middleware.FromDomain(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"redirect": middleware.LoginPath})
}

func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	var req refreshRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
	}
	tok := req.RefreshToken
	if tok == "" {
		tok, _ = middleware.BearerToken(c.Get("Authorization"))
	}
	if tok == "" {
		tok = c.Cookies(middleware.RefreshCookie)
	}

	sess, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		return middleware.FromDomain(err)
	}
	return h.respondSession(c, fiber.StatusOK, nil, sess)
}

func (h *AuthHandler) respondSession(c fiber.Ctx, status int, usr *user.User, sess usecase.Session) error {
	h.setCookie(c, middleware.SessionCookie, sess.AccessToken, h.cookies.AccessTTL)
	h.setCookie(c, middleware.RefreshCookie, sess.RefreshToken, h.cookies.RefreshTTL)

	res := dto.SessionResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.cookies.AccessTTL / time.Second),
	}
	if usr != nil {
		u := dto.NewUserResponse(*usr)
		res.User = &u
	}
	return response.Success(c, status, response.MessageOK, res)
}

func (h *AuthHandler) setCookie(c fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HTTPOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookies(c fiber.Ctx) {
	for _, name := range []string{middleware.SessionCookie, middleware.RefreshCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   h.cookies.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}
