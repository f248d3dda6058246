package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/harvest/internal/service/auth"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.state.Users(principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) AddUser(c *gin.Context) {
	var in auth.NewUser
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	account, err := h.state.AddUser(c.Request.Context(), principal(c), in)
	h.respond(c, http.StatusCreated, account, err)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var in auth.UserUpdate
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	account, err := h.state.UpdateUser(c.Request.Context(), principal(c), c.Param("username"), in)
	h.respond(c, http.StatusOK, account, err)
}

func (h *Handler) RemoveUser(c *gin.Context) {
	username := c.Param("username")
	err := h.state.RemoveUser(c.Request.Context(), principal(c), username)
	h.respond(c, http.StatusOK, gin.H{"deleted": username}, err)
}
