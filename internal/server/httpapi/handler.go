package httpapi

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"

	"github.com/mbazhenov/authkeeper/internal/common"
	"github.com/mbazhenov/authkeeper/internal/server/services"
)

// refreshCookie is the httpOnly cookie carrying the refresh token.
const refreshCookie = "refreshToken"

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r credentialsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(3, 32)),
	)
}

type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         any    `json:"user"`
}

func (s *Server) handleRegistration(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := s.auth.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.renderError(c, err)
	}

	s.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(toAuthResponse(result))
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.renderError(c, err)
	}

	s.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(toAuthResponse(result))
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookie)
	if err := s.auth.Logout(c.UserContext(), token); err != nil {
		return s.renderError(c, err)
	}
	s.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) handleActivate(c *fiber.Ctx) error {
	link := c.Params("link")
	if err := s.auth.Activate(c.UserContext(), link); err != nil {
		return s.renderError(c, err)
	}
	return c.Redirect(s.clientURL)
}

func (s *Server) handleRefresh(c *fiber.Ctx) error {
	token := c.Cookies(refreshCookie)

	result, err := s.auth.Refresh(c.UserContext(), token)
	if err != nil {
		return s.renderError(c, err)
	}

	s.setRefreshCookie(c, result.Tokens.RefreshToken)
	return c.JSON(toAuthResponse(result))
}

func (s *Server) handleListIdentities(c *fiber.Ctx) error {
	users, err := s.auth.ListIdentities(c.UserContext())
	if err != nil {
		return s.renderError(c, err)
	}
	return c.JSON(users)
}

func toAuthResponse(result *services.AuthResult) authResponse {
	return authResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         result.Identity,
	}
}

func (s *Server) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Expires:  time.Now().Add(s.cookieMaxAge),
		HTTPOnly: true,
	})
}

func (s *Server) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
}

// renderError maps the error taxonomy onto HTTP statuses. Business
// rejections are 400, auth failures 401, infrastructure faults 500.
func (s *Server) renderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, common.ErrAlreadyExists),
		errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrInvalidCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	default:
		s.logger.Error(c.UserContext(), "internal error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "internal error"})
	}
}
