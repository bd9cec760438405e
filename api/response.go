package api

import (
	"time"

	beego "github.com/beego/beego/v2/server/web"
)

// APIResponse is the envelope every endpoint returns
type APIResponse struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

// Business error codes
const (
	CodeSuccess           = 0
	CodeBadRequest        = 1000
	CodeInvalidAmount     = 2001
	CodeInvalidWager      = 2002
	CodeRoundClosed       = 2003
	CodeDuplicateWager    = 2004
	CodeInsufficientFunds = 2005
	CodeUnauthorized      = 3000
	CodeInvalidToken      = 3001
	CodeNotFound          = 4004
	CodeSystemError       = 5000
)

var errorMessages = map[int]string{
	CodeSuccess:           "success",
	CodeBadRequest:        "invalid request",
	CodeInvalidAmount:     "amount is outside the allowed range",
	CodeInvalidWager:      "unknown wager kind or value",
	CodeRoundClosed:       "round is closed for wagering",
	CodeDuplicateWager:    "identical wager already placed on this round",
	CodeInsufficientFunds: "insufficient funds",
	CodeUnauthorized:      "unauthorized",
	CodeInvalidToken:      "invalid token",
	CodeNotFound:          "not found",
	CodeSystemError:       "internal error",
}

func messageFor(code int) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return errorMessages[CodeSystemError]
}

// Success writes a success envelope
func Success(c *beego.Controller, data interface{}, traceID string) {
	c.Data["json"] = APIResponse{
		Code:      CodeSuccess,
		Message:   messageFor(CodeSuccess),
		Data:      data,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// Error writes an error envelope with the given HTTP status
func Error(c *beego.Controller, httpStatus, code int, traceID string) {
	c.Ctx.Output.SetStatus(httpStatus)
	c.Data["json"] = APIResponse{
		Code:      code,
		Message:   messageFor(code),
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// ErrorWithMessage writes an error envelope with a custom message
func ErrorWithMessage(c *beego.Controller, httpStatus, code int, message, traceID string) {
	c.Ctx.Output.SetStatus(httpStatus)
	c.Data["json"] = APIResponse{
		Code:      code,
		Message:   message,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}
