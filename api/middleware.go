package api

import (
	"runtime/debug"
	"time"

	"wingo/config"

	beego "github.com/beego/beego/v2/server/web"
	beegocontext "github.com/beego/beego/v2/server/web/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// traceID returns the request's trace identifier injected by
// RequestIDFilter
func traceID(ctx *beegocontext.Context) string {
	if v := ctx.Input.GetData("trace_id"); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RequestIDFilter injects an X-Request-Id on every request so responses
// and log lines can be correlated
func RequestIDFilter(ctx *beegocontext.Context) {
	id := ctx.Input.Header("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	ctx.Input.SetData("trace_id", id)
	ctx.Output.Header("X-Request-Id", id)
}

// recoverPanic converts handler panics into a 500 envelope instead of
// crashing the process. Installed as the beego RecoverFunc, which runs
// deferred around the whole request, so it must call recover itself.
func recoverPanic(ctx *beegocontext.Context, _ *beego.Config) {
	err := recover()
	if err == nil {
		return
	}
	if err == beego.ErrAbort {
		return
	}

	log.WithFields(log.Fields{
		"trace_id": traceID(ctx),
		"method":   ctx.Request.Method,
		"path":     ctx.Request.URL.Path,
		"panic":    err,
		"stack":    string(debug.Stack()),
	}).Error("Panic recovered in request handler")

	ctx.Output.SetStatus(500)
	ctx.Output.JSON(APIResponse{
		Code:      CodeSystemError,
		Message:   messageFor(CodeSystemError),
		TraceID:   traceID(ctx),
		Timestamp: time.Now().UnixMilli(),
	}, false, false)
}

// AuthFilter verifies the bearer token and stashes the account ID on
// the request
func AuthFilter(ctx *beegocontext.Context) {
	claims, err := verifyToken(ctx, config.Get().JWTSecret)
	if err != nil {
		log.WithFields(log.Fields{
			"trace_id": traceID(ctx),
			"path":     ctx.Request.URL.Path,
			"error":    err,
		}).Warn("Authentication failed")

		code := CodeUnauthorized
		if err == ErrInvalidToken || err == ErrTokenExpired {
			code = CodeInvalidToken
		}
		ctx.Output.SetStatus(401)
		ctx.Output.JSON(APIResponse{
			Code:      code,
			Message:   messageFor(code),
			TraceID:   traceID(ctx),
			Timestamp: time.Now().UnixMilli(),
		}, false, false)
		return
	}

	ctx.Input.SetData("account_id", claims.AccountID)
}

// accountID returns the authenticated account injected by AuthFilter
func accountID(ctx *beegocontext.Context) int64 {
	if v := ctx.Input.GetData("account_id"); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
