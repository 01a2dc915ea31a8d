package bridge

import "go.uber.org/zap"

// LostCorrelationNotice is the user-facing text for a lost correlation.
const LostCorrelationNotice = "This component is attempting to communicate with its host, " +
	"but an error is preventing it from doing so. Please restart the component and try again."

// Alerter surfaces unrecoverable protocol errors to the user.
type Alerter interface {
	Alert(err error)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(err error)

// Alert calls f.
func (f AlertFunc) Alert(err error) { f(err) }

// logAlerter is used when no Alerter is configured.
type logAlerter struct {
	logger *zap.Logger
}

func (a logAlerter) Alert(err error) {
	a.logger.Error(LostCorrelationNotice, zap.Error(err))
}
