package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

// Safe logging: in release mode, emails, invite tokens and UUIDs are masked
// before anything reaches the log output.

var (
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production"

	logLevel = getLogLevel()
)

const (
	logLevelDebug = iota
	logLevelInfo
	logLevelWarn
	logLevelError
)

func getLogLevel() int {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return logLevelDebug
	case "WARN", "WARNING":
		return logLevelWarn
	case "ERROR":
		return logLevelError
	default:
		return logLevelInfo
	}
}

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	uuidRegex  = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	// invite tokens are 64 hex chars
	tokenRegex = regexp.MustCompile(`\b[0-9a-f]{64}\b`)
)

func maskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 || len(parts[0]) == 0 {
		return "***@***"
	}
	return parts[0][:1] + "***@" + parts[1]
}

func sanitize(msg string) string {
	if !IsProduction {
		return msg
	}
	msg = tokenRegex.ReplaceAllString(msg, "[token]")
	msg = emailRegex.ReplaceAllStringFunc(msg, maskEmail)
	msg = uuidRegex.ReplaceAllStringFunc(msg, func(id string) string {
		return id[:8] + "-****"
	})
	return msg
}

func LogDebug(format string, args ...interface{}) {
	if logLevel <= logLevelDebug {
		log.Printf("[DEBUG] %s", sanitize(fmt.Sprintf(format, args...)))
	}
}

func LogInfo(format string, args ...interface{}) {
	if logLevel <= logLevelInfo {
		log.Printf("[INFO] %s", sanitize(fmt.Sprintf(format, args...)))
	}
}

func LogWarn(format string, args ...interface{}) {
	if logLevel <= logLevelWarn {
		log.Printf("[WARN] %s", sanitize(fmt.Sprintf(format, args...)))
	}
}

func LogError(format string, args ...interface{}) {
	if logLevel <= logLevelError {
		log.Printf("[ERROR] %s", sanitize(fmt.Sprintf(format, args...)))
	}
}
