package otel

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"coupon-server/internal/infrastructure/config"
)

// Logger トレース情報付きの構造化ロガー
type Logger struct {
	tracer trace.Tracer
	zl     zerolog.Logger
}

// NewLogger 標準出力に書き出すLoggerを作成
func NewLogger(tracer trace.Tracer, cfg *config.LogConfig) *Logger {
	return NewLoggerWithWriter(tracer, os.Stdout, cfg)
}

// NewLoggerWithWriter 出力先を指定してLoggerを作成
func NewLoggerWithWriter(tracer trace.Tracer, w io.Writer, cfg *config.LogConfig) *Logger {
	// 既定はINFOのJSON出力
	level := zerolog.InfoLevel
	format := "json"
	if cfg != nil {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && cfg.Level != "" {
			level = parsed
		}
		if cfg.Format != "" {
			format = cfg.Format
		}
	}
	// 開発用の読みやすい出力
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return &Logger{
		tracer: tracer,
		zl:     zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

// LogLevel ログレベル
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

func (lv LogLevel) zerolog() zerolog.Level {
	switch lv {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Log ログを出力
func (l *Logger) Log(ctx context.Context, level LogLevel, message string, fields map[string]interface{}) {
	// 出力対象外のレベルはnil
	event := l.zl.WithLevel(level.zerolog())
	if event == nil {
		return
	}

	// トレースIDとSpanIDを付与
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		event = event.
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String())
	}

	// 付加情報とメッセージを出力
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(message)
}

// Debug Debugレベルのログを出力
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelDebug, message, fields)
}

// Info Infoレベルのログを出力
func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelInfo, message, fields)
}

// Warn Warnレベルのログを出力
func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelWarn, message, fields)
}

// Error Errorレベルのログを出力
func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	// エラー内容を付加
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Log(ctx, LogLevelError, message, fields)
}
