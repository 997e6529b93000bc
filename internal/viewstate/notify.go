package viewstate

import "petora-connect/internal/platform/logger"

type Outcome string

const (
	Succeeded Outcome = "succeeded"
	Failed    Outcome = "failed"
)

// Notification es el resultado terminal de una mutación (el "toast" de la UI).
type Notification struct {
	Op      string
	Outcome Outcome
	Err     error
}

type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

func NopNotifier() Notifier {
	return NotifierFunc(func(Notification) {})
}

// LogNotifier registra cada resultado; los fallos van a Warn.
func LogNotifier(log logger.Logger) Notifier {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(map[string]any{"module": "viewstate"})
	return NotifierFunc(func(n Notification) {
		if n.Outcome == Failed {
			log.Warn("mutation failed", map[string]any{"op": n.Op, "err": n.Err})
			return
		}
		log.Debug("mutation committed", map[string]any{"op": n.Op})
	})
}
