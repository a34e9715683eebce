package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger. Development loggers are human readable and
// log at debug level.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
