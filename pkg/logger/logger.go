package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

var (
	fileMu  sync.Mutex
	logFile *os.File
)

type fieldsKey struct{}

// Init configures the shared logger. An empty level keeps debug output; a
// non-empty file path duplicates output into that file. A file opened by an
// earlier call is closed.
func Init(level, file string) error {
	parsed := logrus.DebugLevel
	if strings.TrimSpace(level) != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		parsed = lvl
	}

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
		ForceColors:     true,
		PadLevelText:    true,
	})
	Logger.SetLevel(parsed)

	fileMu.Lock()
	defer fileMu.Unlock()

	Logger.SetOutput(os.Stdout)
	if logFile != nil {
		previous := logFile
		logFile = nil
		if err := previous.Close(); err != nil {
			Logger.WithError(err).Warn("Failed to close previous log file")
		}
	}

	file = strings.TrimSpace(file)
	if file == "" {
		return nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	logFile = f
	Logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

// Close releases the log file opened by Init, if any.
func Close() error {
	fileMu.Lock()
	defer fileMu.Unlock()

	if logFile == nil {
		return nil
	}
	Logger.SetOutput(os.Stdout)
	err := logFile.Close()
	logFile = nil
	return err
}

func Info(msg string, fields map[string]interface{}) {
	Logger.WithFields(fields).Info(msg)
}

func Error(err error, msg string, fields map[string]interface{}) {
	Logger.WithError(err).WithFields(fields).Error(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	Logger.WithFields(fields).Warn(msg)
}

func Debug(msg string, fields map[string]interface{}) {
	Logger.WithFields(fields).Debug(msg)
}

func Fatal(msg string, fields map[string]interface{}) {
	Logger.WithFields(fields).Fatal(msg)
}

// ContextWithFields attaches log fields to ctx, merged with any already present.
func ContextWithFields(ctx context.Context, fields map[string]interface{}) context.Context {
	merged := logrus.Fields{}
	if existing, ok := ctx.Value(fieldsKey{}).(logrus.Fields); ok {
		for k, v := range existing {
			merged[k] = v
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// FromContext returns an entry carrying the fields stored in ctx.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if fields, ok := ctx.Value(fieldsKey{}).(logrus.Fields); ok {
			return Logger.WithFields(fields)
		}
	}
	return logrus.NewEntry(Logger)
}

func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		if raw != "" {
			path += "?" + raw
		}

		entry := FromContext(c.Request.Context()).WithFields(logrus.Fields{
			"ip":     c.ClientIP(),
			"method": c.Request.Method,
			"path":   path,
			"status": status,
			"took":   duration,
		})

		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request completed")
		}
	}
}
