package gorm

import (
	"fmt"
	"strings"
	"time"

	gorm_logger "gorm.io/gorm/logger"

	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// NewGormLogger builds a GORM logger that routes output through the Maestro
// leveled logger. An unknown level falls back to Silent.
func NewGormLogger(level string) gorm_logger.Interface {
	var gormLevel gorm_logger.LogLevel
	switch strings.ToUpper(level) {
	case "ERROR":
		gormLevel = gorm_logger.Error
	case "WARN":
		gormLevel = gorm_logger.Warn
	case "INFO", "DEBUG":
		gormLevel = gorm_logger.Info
	default:
		gormLevel = gorm_logger.Silent
	}

	return gorm_logger.New(
		NewGormWriter(),
		gorm_logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GormWriter redirects GORM log output to the Maestro logger. SQL traces go
// to DEBUG, everything else to INFO.
type GormWriter struct{}

// NewGormWriter creates a new GormWriter.
func NewGormWriter() *GormWriter {
	return &GormWriter{}
}

// Printf implements the gorm logger Writer interface.
func (w *GormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	if strings.Contains(msg, "SELECT") || strings.Contains(msg, "INSERT") || strings.Contains(msg, "UPDATE") || strings.Contains(msg, "DELETE") {
		logger.Debugf("[GORM] %s", msg)
	} else {
		logger.Infof("[GORM] %s", msg)
	}
}
