// Package websocket publishes report state transitions to browser clients.
//
// A single Hub goroutine owns the set of connected clients. Report generation
// reaches the hub through report.Observer; broadcasts never block a report
// and clients that cannot keep up are disconnected. The feed is one-way and
// carries aggregate information only: report id, state, outcome, degraded
// reason and row count.
package websocket
