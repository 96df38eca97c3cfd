package api

import (
	"errors"
	"net/http"
	"strconv"

	"LifeStats/internal/service"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor 业务错误 -> HTTP 状态码
func statusFor(err error) int {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		transient  *service.TransientIOError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &transient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError 记录日志并返回 {"error", "kind"}；校验失败与不存在只记 Warn
func writeError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	status := statusFor(err)
	kind := service.ErrorKind(err)
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"op":         op,
		"error_kind": kind,
		"status":     status,
		"request_id": c.GetString(requestIDKey),
	})
	if status >= http.StatusInternalServerError {
		entry.Error(op + " failed")
		reportError(op, kind, err)
	} else {
		entry.Warn(op + " rejected")
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

// reportError 5xx 上报到 Sentry（未初始化时为空操作），只带操作名与错误分类，不带请求内容
func reportError(op, kind string, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("component", "api")
		scope.SetTag("operation", op)
		scope.SetTag("error_kind", kind)
		sentry.CaptureException(err)
	})
}

// badRequest 请求体无法解析
func badRequest(c *gin.Context, logger *logrus.Logger, op string, err error) {
	writeError(c, logger, op, &service.ValidationError{Field: "body", Reason: err.Error()})
}

// parseID 解析路径参数 :id
func parseID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &service.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

// boolQuery 解析布尔查询参数，非法值视为默认值
func boolQuery(c *gin.Context, key string, def bool) bool {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func intQuery(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
