package logger

import (
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// callerHook rewrites the caller logrus reports so it points to the first
// frame outside logrus itself and this package.
type callerHook struct{}

func (h *callerHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *callerHook) Fire(entry *logrus.Entry) error {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(6, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !more {
			break
		}
		if strings.Contains(frame.Function, "sirupsen/logrus") || strings.Contains(frame.Function, "pairdiscovery/logger") {
			continue
		}
		entry.Caller = &frame
		break
	}
	return nil
}
