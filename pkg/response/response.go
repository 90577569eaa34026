package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/formation-api/pkg/errors"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope represents the common response contract.
type Envelope struct {
	Status  string           `json:"status"`
	Token   string           `json:"token,omitempty"`
	Results *int             `json:"results,omitempty"`
	Data    interface{}      `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
	Error   *appErrors.Error `json:"error,omitempty"`
}

// JSON sends a success response.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Status: StatusSuccess, Data: data})
}

// WithToken sends a success response carrying a freshly issued bearer token.
func WithToken(c *gin.Context, status int, token string, data interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Status: StatusSuccess, Token: token, Data: data})
}

// List sends a success response with the number of returned items.
func List(c *gin.Context, data interface{}, results int) {
	noStore(c)
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Results: &results, Data: data})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
// The original error is attached to the gin context for the request logger;
// server faults reach the client only as the generic internal error.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	noStore(c)

	if appErr.Status >= http.StatusInternalServerError {
		generic := appErrors.Clone(appErrors.ErrInternal, "")
		c.JSON(generic.Status, Envelope{Status: StatusError, Message: generic.Message, Error: generic})
		return
	}
	c.JSON(appErr.Status, Envelope{Status: StatusFail, Message: appErr.Message, Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
