package assetstore

import (
	"fmt"
	"sync"

	"folio/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsOnce sync.Once
	vipsErr  error
)

// InitVips starts libvips once per process. libvips messages are routed into our logs.
func InitVips() error {
	vipsOnce.Do(func() {
		level := vips.LogLevelWarning
		if logging.GetLevel() == logging.LevelDebug {
			level = vips.LogLevelInfo
		}
		vips.LoggingSettings(func(domain string, l vips.LogLevel, msg string) {
			switch l {
			case vips.LogLevelError, vips.LogLevelCritical:
				logging.Error("[%s] %s", domain, msg)
			case vips.LogLevelWarning:
				logging.Warn("[%s] %s", domain, msg)
			default:
				logging.Debug("[%s] %s", domain, msg)
			}
		}, level)
		vipsErr = startVips()
		if vipsErr != nil {
			logging.Error("libvips is not available: %v", vipsErr)
			return
		}
		logging.Info("libvips initialized (version: %s)", vips.Version)
	})
	return vipsErr
}

// startVips turns the panic govips raises on a failed startup into an error
func startVips() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("vips startup: %v", r)
		}
	}()
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})
	return nil
}
