package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pagination echoes list parameters alongside totals.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// Envelope is the uniform response body every endpoint returns.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func OKMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func OKList(c *gin.Context, data any, p Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: false, Error: msg})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Success: false, Error: "unauthorized"})
}

func Unauthorized(c *gin.Context)           { Fail(c, http.StatusUnauthorized, "unauthorized") }
func BadRequest(c *gin.Context, msg string) { Fail(c, http.StatusBadRequest, msg) }
func Forbidden(c *gin.Context, msg string)  { Fail(c, http.StatusForbidden, msg) }
func NotFound(c *gin.Context, msg string)   { Fail(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)   { Fail(c, http.StatusConflict, msg) }
func Internal(c *gin.Context, msg string)   { Fail(c, http.StatusInternalServerError, msg) }
