package gatt

import "github.com/sirupsen/logrus"

// component loggers. Each carries a "component" field so a consumer's
// logrus hook or formatter can filter/route per layer without the
// caller having to thread a *logrus.Entry through every constructor.
var (
	logHCI      = logrus.WithField("component", "hci")
	logGAP      = logrus.WithField("component", "gap")
	logGATT     = logrus.WithField("component", "gatt")
	logFirmware = logrus.WithField("component", "firmware")
)

// SetLogLevel adjusts the package-wide logrus level. Defaults to
// logrus's default (Info). Embedded callers that want to silence the
// stack entirely should pass logrus.PanicLevel.
func SetLogLevel(level logrus.Level) {
	logrus.SetLevel(level)
}
