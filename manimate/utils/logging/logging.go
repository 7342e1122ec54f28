package logging

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Loggers are no-ops until InitLogger runs, so packages and tests can log freely.
var (
	AppLogger     = zap.NewNop()
	RequestLogger = zap.NewNop()
	TimerLogger   = zap.NewNop()
	ErrorLogger   = zap.NewNop()
)

func rotating(dir, name string, maxSize, maxAge int) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename: filepath.Join(dir, name),
		MaxSize:  maxSize,
		MaxAge:   maxAge,
		Compress: true,
	})
}

// InitLogger writes app.log, request.log, timer.log and error.log under dir.
// With console set, app and error entries are also mirrored to stdout.
func InitLogger(dir string, console bool) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	var consoleCore zapcore.Core = zapcore.NewNopCore()
	if console {
		consoleCore = zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stdout),
			zap.InfoLevel,
		)
	}

	appCore := zapcore.NewCore(encoder, rotating(dir, "app.log", 100, 28), zap.InfoLevel)
	AppLogger = zap.New(zapcore.NewTee(appCore, consoleCore))

	requestCore := zapcore.NewCore(encoder, rotating(dir, "request.log", 50, 7), zap.InfoLevel)
	RequestLogger = zap.New(requestCore)

	timerCore := zapcore.NewCore(encoder, rotating(dir, "timer.log", 50, 7), zap.InfoLevel)
	TimerLogger = zap.New(timerCore)

	errorCore := zapcore.NewCore(encoder, rotating(dir, "error.log", 100, 30), zap.ErrorLevel)
	ErrorLogger = zap.New(zapcore.NewTee(errorCore, consoleCore), zap.AddCaller())

	return nil
}

func Sync() {
	for _, l := range []*zap.Logger{AppLogger, RequestLogger, TimerLogger, ErrorLogger} {
		_ = l.Sync()
	}
}

// LogDuration lets you do: defer logging.LogDuration(ctx, "FuncName")()
func LogDuration(ctx context.Context, name string) func() {
	start := time.Now()
	requestID := middleware.GetReqID(ctx)

	return func() {
		fields := []zap.Field{
			zap.String("func", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		TimerLogger.Info("Function timed", fields...)
	}
}

// RequestMiddleware writes one line per request to request.log.
func RequestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		RequestLogger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}
