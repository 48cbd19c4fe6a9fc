package handler

import (
	"net/http"

	"collabtask/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	identity *service.IdentityService
	log      logrus.FieldLogger
}

func NewUserHandler(identity *service.IdentityService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{identity: identity, log: log}
}

// Signup godoc
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      service.SignupInput  true  "Account"
// @Success      201   {object}  service.AuthResult
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /signup [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	res, err := h.identity.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Login godoc
// @Summary      Log in with email and password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      service.LoginInput  true  "Credentials"
// @Success      200   {object}  service.AuthResult
// @Failure      401   {object}  ErrorResponse
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	res, err := h.identity.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// List godoc
// @Summary      List every user's public profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string][]service.UserSummary
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.identity.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateProfile godoc
// @Summary      Update the caller's name and avatar
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userID  path      string                true  "User ID"
// @Param        body    body      service.ProfileInput  true  "Profile"
// @Success      200     {object}  service.UserSummary
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /users/{userID} [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	user, err := h.identity.UpdateProfile(c.Request.Context(), actorID(c), c.Param("userID"), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
