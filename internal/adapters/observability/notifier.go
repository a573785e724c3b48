package observability

import "github.com/rs/zerolog/log"

// LogNotifier is the headless stand-in for the account screen's toast rail:
// notifications land in the structured log and a counter.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) {
	ObserveNotification("success")
	log.Info().Str("notify", "success").Msg(msg)
}

func (LogNotifier) Error(msg string) {
	ObserveNotification("error")
	log.Warn().Str("notify", "error").Msg(msg)
}

func (LogNotifier) Warning(msg string) {
	ObserveNotification("warning")
	log.Warn().Str("notify", "warning").Msg(msg)
}
