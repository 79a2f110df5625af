package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sistema-pedidos/orders-api/internal/api/metrics"
	"github.com/sistema-pedidos/orders-api/internal/api/middleware"
	"github.com/sistema-pedidos/orders-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func recordAuth(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}

// Ping confirms the auth routes are reachable.
//
// @Summary      Auth ping
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/ [get]
func (h *AuthHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "auth routes reachable"})
}

// Register creates a standard account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/criar_conta [post]
func (h *AuthHandler) Register(c echo.Context) (err error) {
	defer func() { recordAuth("register", err) }()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: fmt.Sprintf("account %s created", account.Email),
		Account: toAccountResponse(account),
	})
}

// RegisterAdmin creates an admin account. The caller must be an admin.
//
// @Summary      Register a new admin account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/criar_admin [post]
func (h *AuthHandler) RegisterAdmin(c echo.Context) (err error) {
	defer func() { recordAuth("register_admin", err) }()

	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.authService.RegisterAdmin(c.Request().Context(), caller, ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: fmt.Sprintf("admin %s created", account.Email),
		Account: toAccountResponse(account),
	})
}

// Login authenticates with a JSON body and returns an access and a refresh token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenPairResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) (err error) {
	defer func() { recordAuth("login", err) }()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.authService.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	pair, err := h.authService.IssueTokenPair(account.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	})
}

// LoginForm authenticates with form fields username and password, as sent by
// OAuth2 password-flow clients such as the Swagger UI, and returns an access
// token only.
//
// @Summary      Login (form)
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Account email"
// @Param        password  formData  string  true  "Account password"
// @Success      200       {object}  accessTokenResponse
// @Failure      401       {object}  errorResponse
// @Router       /auth/login-form [post]
func (h *AuthHandler) LoginForm(c echo.Context) (err error) {
	defer func() { recordAuth("login_form", err) }()

	account, err := h.authService.Authenticate(c.Request().Context(), c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		return err
	}

	token, err := h.authService.IssueAccessToken(account.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accessTokenResponse{AccessToken: token, TokenType: "Bearer"})
}

// Refresh mints a new access token from the bearer token of the request.
//
// @Summary      Refresh access token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accessTokenResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/refresh [get]
func (h *AuthHandler) Refresh(c echo.Context) (err error) {
	defer func() { recordAuth("refresh", err) }()

	refreshToken, err := middleware.BearerToken(c)
	if err != nil {
		return err
	}

	token, err := h.authService.RefreshAccessToken(c.Request().Context(), refreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accessTokenResponse{AccessToken: token, TokenType: "Bearer"})
}
