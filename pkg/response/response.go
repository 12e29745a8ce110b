// Package response provides unified HTTP response helpers.
package response

import (
	"net/http"

	"makao/pkg/logger"

	"github.com/gin-gonic/gin"
)

// predefined response statuses
const (
	Success = "success"
	Error   = "error"
)

/* standard envelope
{
    "status": "success",
    "data": {},     // payload on success
    "error": "",    // error detail
    "message": "",  // human readable message
}
*/

// Response unified envelope
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Data responds 200 with a payload.
func Data(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: Success,
		Data:   data,
	})
}

// JSON responds 200 with raw data, no envelope. Used by the gateway
// webhook handlers which must answer in the provider's format.
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created responds 201 with a payload.
func Created(c *gin.Context, data interface{}, msg ...string) {
	c.JSON(http.StatusCreated, Response{
		Status:  Success,
		Message: getMsg("created", msg...),
		Data:    data,
	})
}

// Abort400 responds 400.
func Abort400(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Status:  Error,
		Message: getMsg("invalid request parameters", msg...),
	})
}

// Abort404 responds 404.
func Abort404(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{
		Status:  Error,
		Message: getMsg("resource not found", msg...),
	})
}

// Abort500 responds 500.
func Abort500(c *gin.Context, msg ...string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Status:  Error,
		Message: getMsg("internal server error", msg...),
	})
}

// BadRequest responds 400 carrying the error detail.
func BadRequest(c *gin.Context, err error, msg ...string) {
	logger.LogIf(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Status:  Error,
		Message: getMsg("request malformed", msg...),
		Error:   err.Error(),
	})
}

// ServerError responds 500 carrying the error detail.
func ServerError(c *gin.Context, err error, msg ...string) {
	logger.LogIf(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
		Status:  Error,
		Message: getMsg("internal server error", msg...),
		Error:   err.Error(),
	})
}

// ValidationError responds 422 with field errors.
func ValidationError(c *gin.Context, errors map[string][]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Response{
		Status:  Error,
		Message: "validation failed",
		Data:    errors,
	})
}

func getMsg(defaultMsg string, msg ...string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return defaultMsg
}
