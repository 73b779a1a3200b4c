package audit

import "context"

// Log is a single operator-facing audit line, written synchronously.
type Log struct {
	Action  string
	Message string
	ActorID string
	Meta    map[string]any
}

type Logger interface {
	Log(ctx context.Context, entry Log)
}

type NopLogger struct{}

func (NopLogger) Log(context.Context, Log) {}
