package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/sma-staff-api/pkg/config"
	"github.com/noah-isme/sma-staff-api/pkg/middleware/requestid"
)

const serviceName = "sma-staff-api"

// New builds the process logger from configuration.
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
	zapCfg.InitialFields = map[string]interface{}{"service": serviceName, "env": cfg.Env}

	return zapCfg.Build()
}

// ForRequest returns a child logger tagged with the request id, when one is present.
func ForRequest(l *zap.Logger, c *gin.Context) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	if reqID := requestid.Value(c); reqID != "" {
		return l.With(zap.String("request_id", reqID))
	}
	return l
}

// GinMiddleware logs one structured line per request.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		reqLogger := ForRequest(l, c)
		switch status := c.Writer.Status(); {
		case status >= 500:
			reqLogger.Error("http_request", fields...)
		case status >= 400:
			reqLogger.Warn("http_request", fields...)
		default:
			reqLogger.Info("http_request", fields...)
		}
	}
}
