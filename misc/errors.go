package misc

import (
	"fmt"

	"github.com/BrugadaSyndrome/bslogger"
)

const (
	Fatal Severity = iota
	Error
	Warning
	Info
	Debug
)

type Severity int

func (s Severity) String() string {
	return []string{
		"Fatal", "Error", "Warning", "Info", "Debug",
	}[s]
}

// CheckError reports err on the logger at the given severity and returns true when there was an error.
// A Fatal severity exits the process.
func CheckError(err error, logger bslogger.Logger, severity Severity, action string) bool {
	if err == nil {
		return false
	}

	message := err.Error()
	if action != "" {
		message = fmt.Sprintf("%s - %s", action, err)
	}

	switch severity {
	case Fatal:
		logger.Fatal(message)
	case Error:
		logger.Error(message)
	case Warning:
		logger.Warning(message)
	case Info:
		logger.Info(message)
	case Debug:
		logger.Debug(message)
	default:
		logger.Fatal(message)
	}
	return true
}
