package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the JSON envelope every endpoint returns. Detail
// carries the human-readable error message on failures.
type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Detail    string      `json:"detail,omitempty"`
	Data      T           `json:"data,omitempty"`
	Errors    interface{} `json:"errors,omitempty"`
}

// Success writes a success envelope with the given status and payload.
func Success[T any](ctx *gin.Context, status int, data T, detail string) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Detail:    detail,
		Data:      data,
	})
}

// Error writes a failure envelope. errs optionally carries structured
// field errors from validation.
func Error(ctx *gin.Context, status int, detail string, errs interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, APIResponse[any]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Detail:    detail,
		Errors:    errs,
	})
}

// Abort writes a failure envelope and stops the handler chain; used by
// middleware rejections.
func Abort(ctx *gin.Context, status int, detail string) {
	ctx.Abort()
	Error(ctx, status, detail, nil)
}
