package probe

import (
	"time"

	"github.com/sirupsen/logrus"
)

const errorLogInterval = time.Second

// errorLog limits a warning raised from a tight loop to one entry per
// interval. Entries that were held back are counted in the next one.
type errorLog struct {
	msg        string
	every      time.Duration
	last       time.Time
	suppressed int
}

func newErrorLog(msg string) errorLog {
	return errorLog{msg: msg, every: errorLogInterval}
}

func (l *errorLog) warn(entry *logrus.Entry, at time.Time, err error) bool {
	if !l.last.IsZero() && at.Sub(l.last) < l.every {
		l.suppressed++
		return false
	}
	if l.suppressed > 0 {
		entry = entry.WithField("suppressed", l.suppressed)
	}
	entry.WithError(err).Warn(l.msg)
	l.last = at
	l.suppressed = 0
	return true
}
