package shared

import "context"

// Component is anything the server starts and must stop.
type Component interface {
	GetType() string
	Shutdown(ctx context.Context) error
}

// StatusReporter is a component that can describe its runtime state.
type StatusReporter interface {
	Component
	GetStatus() map[string]interface{}
}
