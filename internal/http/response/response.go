package response

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sonder-backend/internal/platform/apierr"
	"github.com/yungbote/sonder-backend/internal/platform/ctxutil"
)

// Envelope is the uniform response shape: {success, data} on the happy path,
// {success:false, error:{code,message}} otherwise, with ids for support.
type Envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *ErrorDoc `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	TraceID   string    `json:"trace_id,omitempty"`
}

type ErrorDoc struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func OK(c *gin.Context, status int, data any) {
	env := Envelope{Success: true, Data: data}
	attachIDs(c, &env)
	c.JSON(status, env)
}

// Reject renders a business rejection: success false with a payload the
// client can show the user, distinct from Err's transport/validation errors.
func Reject(c *gin.Context, status int, code, message string, data any) {
	env := Envelope{
		Success: false,
		Data:    data,
		Error:   &ErrorDoc{Code: code, Message: message},
	}
	attachIDs(c, &env)
	c.AbortWithStatusJSON(status, env)
}

// Err maps the error's apierr status/code onto the envelope. The raw error
// string is only surfaced for 4xx; 5xx details stay in the logs.
func Err(c *gin.Context, err error) {
	status := apierr.StatusOf(err)
	doc := &ErrorDoc{Code: apierr.CodeOf(err)}
	if status < 500 && err != nil {
		doc.Message = err.Error()
	} else {
		doc.Message = "internal error"
	}
	env := Envelope{Success: false, Error: doc}
	attachIDs(c, &env)
	c.AbortWithStatusJSON(status, env)
}

func attachIDs(c *gin.Context, env *Envelope) {
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		env.RequestID = td.RequestID
		env.TraceID = td.TraceID
	}
}
