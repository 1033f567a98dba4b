package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital/pharmacy-api/internal/api/metrics"
	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func observeAuth(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AuthRequestsTotal.WithLabelValues(operation, result).Inc()
}

// Login authenticates a user and returns a JWT token with the profile.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  messageResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	observeAuth("login", err)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid email or password"})
		}
		return err
	}

	u := res.User
	return c.JSON(http.StatusOK, loginResponse{
		Token:     res.Token,
		ID:        u.ID,
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	})
}

// Register creates a new user account and logs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  messageResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	observeAuth("register", err)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailInUse):
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Email already in use"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
		}
		return err
	}

	u := res.User
	return c.JSON(http.StatusCreated, registerResponse{
		Token:     res.Token,
		UserID:    u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	})
}

// Validate checks the bearer token and returns the caller's profile.
//
// @Summary      Validate a token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  invalidTokenResponse
// @Router       /auth/validate [get]
func (h *AuthHandler) Validate(c echo.Context) error {
	user, err := h.authService.Validate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
	observeAuth("validate", err)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, invalidTokenResponse{Valid: false, Message: "Invalid token"})
	}

	return c.JSON(http.StatusOK, profileResponse{
		UserID:    user.UserID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
	})
}

// CreateAdmin creates the initial administrator when none exists.
//
// @Summary      Create the initial admin
// @Tags         auth
// @Produce      json
// @Success      201  {object}  createAdminResponse
// @Failure      400  {object}  messageResponse
// @Router       /auth/create-admin [post]
func (h *AuthHandler) CreateAdmin(c echo.Context) error {
	res, err := h.authService.BootstrapAdmin(c.Request().Context())
	observeAuth("create_admin", err)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAdminExists):
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Admin user already exists"})
		case errors.Is(err, domain.ErrEmailInUse):
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Email already in use"})
		}
		return err
	}

	return c.JSON(http.StatusCreated, createAdminResponse{
		Message:  "Initial admin created successfully",
		Email:    res.Email,
		Password: res.Password,
	})
}

// ForgotPassword mails a reset link when the address belongs to a user.
// The response does not reveal whether it does.
//
// @Summary      Request a password reset link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	observeAuth("forgot_password", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Reset link sent"})
}

// ResetPassword sets a new password using a reset token.
//
// @Summary      Reset a password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.Password)
	observeAuth("reset_password", err)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidResetToken):
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Invalid or expired reset token"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
		}
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Password reset successfully"})
}
