package utils

import (
	"io"

	"github.com/sirupsen/logrus"
)

// SetUpLogrus points the standard logger at w. Stdout is left for
// measurement output.
func SetUpLogrus(w io.Writer, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:          true,
		TimestampFormat:        "2006-01-02 15:04:05.000",
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
	logrus.SetLevel(lvl)
	return nil
}
