package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/formation-api/pkg/config"
	appErrors "github.com/noah-isme/formation-api/pkg/errors"
	"github.com/noah-isme/formation-api/pkg/middleware/requestid"
)

func New(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Log.Format {
	case "console":
		zapCfg.Encoding = "console"
	default:
		zapCfg.Encoding = "json"
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// GinMiddleware writes one log line per request. Errors attached to the
// context by response.Error are logged in full when the request failed with a
// server fault; client faults only carry their error codes.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		reqID := requestid.Value(c)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		}
		if reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}

		if status >= http.StatusInternalServerError && len(c.Errors) > 0 {
			fields = append(fields, zap.Errors("errors", errorList(c.Errors)))
			l.Error("http_request", fields...)
			return
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("error_codes", errorCodes(c.Errors)))
		}

		l.Info("http_request", fields...)
	}
}

func errorList(errs []*gin.Error) []error {
	out := make([]error, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Err)
	}
	return out
}

func errorCodes(errs []*gin.Error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, appErrors.FromError(e.Err).Code)
	}
	return out
}
