package model

// Logger is the full logger handle owned by the process entry point.
// Services depend on outbound.Logger; only main updates the level or shuts it down.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	UpdateLevel(logLvl string)
	Shutdown()
}
