package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrcode-api/internal/pagination"
	"qrcode-api/internal/repository"
	"qrcode-api/internal/service"
)

func (h *Handler) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, userToResponse(currentUser(c)))
}

type updateMeRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *Handler) updateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUser(c), service.ProfileUpdate{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) listUsers(c *gin.Context) {
	params, sorting, err := h.pageParams(c, repository.UserSortFields)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	page, err := h.users.List(c.Request.Context(), params, sorting)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, userToPublicResponse))
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user, err := h.users.Create(c.Request.Context(), service.NewUser{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		IsActive:    active,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToPublicResponse(*user))
}

type updateUserFlagsRequest struct {
	IsActive    *bool `json:"is_active"`
	IsSuperuser *bool `json:"is_superuser"`
}

func (h *Handler) updateUserFlags(c *gin.Context) {
	id, ok := parseID(c, "invalid user id")
	if !ok {
		return
	}

	var req updateUserFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.users.SetFlags(c.Request.Context(), id, req.IsActive, req.IsSuperuser)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToPublicResponse(*user))
}

func (h *Handler) pageParams(c *gin.Context, fields pagination.SortFields) (pagination.Params, pagination.Sorting, error) {
	return h.paging.Parse(c.Query("page"), c.Query("per_page"), c.Query("sort"), c.Query("order"), fields)
}

func parseID(c *gin.Context, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, message)
		return 0, false
	}
	return id, true
}
