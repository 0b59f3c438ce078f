package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/service/accounts"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service accounts.AccountUseCase
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type verifyEmailRequest struct {
	Code string `json:"code" form:"code"`
}

type passwordResetRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

var registerRules = []fieldRule{
	{field: "Username", tag: "min", err: accounts.ErrUsernameTooShort},
	{field: "Username", tag: "max", err: accounts.ErrInvalidValue},
	{field: "Username", tag: "alphanum", err: accounts.ErrInvalidValue},
	{field: "PhoneNumber", tag: "phone", err: accounts.ErrInvalidValue},
	{field: "Email", tag: "required", err: accounts.ErrInvalidEmail},
	{field: "Email", tag: "email", err: accounts.ErrInvalidEmail},
	{field: "Password", tag: "min", err: accounts.ErrPasswordTooShort},
}

var updateAccountRules = []fieldRule{
	{field: "Email", tag: "required", err: accounts.ErrFieldRequired},
	{field: "FirstName", tag: "required", err: accounts.ErrFieldRequired},
	{field: "Email", tag: "email", err: accounts.ErrInvalidEmail},
	{field: "PhoneNumber", tag: "phone", err: accounts.ErrInvalidValue},
	{field: "Gender", tag: "oneof", err: accounts.ErrInvalidChoice},
	{field: "DateOfBirth", tag: "isodate", err: accounts.ErrInvalidDate},
}

var passwordResetRules = []fieldRule{
	{field: "Email", tag: "required", err: accounts.ErrInvalidEmail},
	{field: "Email", tag: "email", err: accounts.ErrInvalidEmail},
}

func NewAccountHandler(service accounts.AccountUseCase) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) Register(router *gin.RouterGroup, authn *Authenticator) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/password-reset", h.requestPasswordReset)
	router.POST("/password-reset/confirm", h.resetPassword)

	user := router.Group("", authn.RequireUser())
	user.POST("/logout", h.logout)
	user.POST("/verify-email", h.verifyEmail)
	user.POST("/verify-email/resend", h.resendVerification)
	user.GET("/account", h.account)
	user.POST("/update-account", h.updateAccount)
}

func (h *AccountHandler) register(c *gin.Context) {
	var req accounts.RegisterInput
	if !bind(c, &req, registerRules) {
		return
	}

	session, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *AccountHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidForm})
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *AccountHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), claimsFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

func (h *AccountHandler) verifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidForm})
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), accountID(c), req.Code); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your email has been verified."})
}

func (h *AccountHandler) resendVerification(c *gin.Context) {
	if err := h.service.ResendVerification(c.Request.Context(), accountID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "A new verification code has been sent."})
}

func (h *AccountHandler) requestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if !bind(c, &req, passwordResetRules) {
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "If the email is registered, a reset code has been sent."})
}

func (h *AccountHandler) resetPassword(c *gin.Context) {
	var req accounts.ResetPasswordInput
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidForm})
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your password has been reset."})
}

func (h *AccountHandler) account(c *gin.Context) {
	account, err := h.service.GetAccount(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) updateAccount(c *gin.Context) {
	var req accounts.UpdateAccountInput
	if !bind(c, &req, updateAccountRules) {
		return
	}

	account, err := h.service.UpdateAccount(c.Request.Context(), accountID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
