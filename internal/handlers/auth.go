package handlers

import (
	"errors"
	"net/http"

	"marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// Single, shared credentials payload for both sign-up and sign-in.
type authCredentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a
// 400 JSON on failure. Returns false if the request was already handled.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.debugf("bad_request_body", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// @Summary      Register
// @Description  Creates an account and returns a bearer token with the user (password never included).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  authCredentials  true  "Credentials"
// @Success      201  {object}  map[string]interface{}  "token, user"
// @Failure      400  {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, token, err := h.services.SignUp(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.debugf("sign_up_failed", "email", input.Email, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  authCredentials  true  "Credentials"
// @Success      200  {object}  map[string]interface{}  "token, user"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	user, token, err := h.services.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.debugf("sign_in_failed", "email", input.Email, "err", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// @Summary      Change password
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body  changePasswordRequest  true  "Passwords"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/account/password [post]
// @Security     BearerAuth
func (h *Handler) changePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errNotAuthorized})
		return
	}

	var input changePasswordRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	err := h.services.ChangePassword(c.Request.Context(), user.ID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// @Summary      Delete account
// @Description  Removes the account. Items created by the user are not cascaded.
// @Tags         account
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/account [delete]
// @Security     BearerAuth
func (h *Handler) deleteAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errNotAuthorized})
		return
	}

	if err := h.services.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to delete account", "account_delete_failed", err, "user_id", user.ID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}
