//go:build !linux

package benchmark

import (
	"go.uber.org/zap"
)

// SetMaxResources leaves limits alone outside Linux. The Go runtime thread
// limit already exceeds what the workers need.
func SetMaxResources(log *zap.Logger) error {
	log.Debug("system resources left at defaults")
	return nil
}
