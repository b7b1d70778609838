package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// accessToken implements the OAuth2 password grant with form fields
// username and password.
func (h *Handler) accessToken(c *gin.Context) {
	user, err := h.users.Authenticate(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	if !user.IsActive {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Inactive user"})
		return
	}

	token, err := h.tokens.Issue(user.ID, h.tokenTTL)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, AccessTokenResponse{AccessToken: token, TokenType: "bearer"})
}

type signUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.users.SignUp(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) rotateAPIKey(c *gin.Context) {
	user, err := h.users.RotateAPIKey(c.Request.Context(), currentUser(c))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}
