package router

import "time"

// Metrics is the narrow observation surface the router calls into. The
// dispatch core does not depend on any particular metrics backend; the
// Prometheus implementation lives in internal/metrics.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed(duration time.Duration)
	MessageSent(deliveredOnline bool)
	RateLimited()
	Error(errorType string)
	// DispatchStarted starts a timer around one frame dispatch and returns
	// the stop function.
	DispatchStarted() func()
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ConnectionOpened()              {}
func (NopMetrics) ConnectionClosed(time.Duration) {}
func (NopMetrics) MessageSent(bool)               {}
func (NopMetrics) RateLimited()                   {}
func (NopMetrics) Error(string)                   {}
func (NopMetrics) DispatchStarted() func()        { return func() {} }
