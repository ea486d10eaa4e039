// Package events defines the messages published on the report-state WebSocket feed.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeReportState is sent on every report state transition
	MessageTypeReportState MessageType = "report:state"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// Message is the envelope of every WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ReportState describes one report state transition. Only aggregate
// information is carried; customer identifiers never leave the server.
type ReportState struct {
	ReportID string `json:"report_id"`
	State    string `json:"state"`
	Outcome  string `json:"outcome,omitempty"` // validated|degraded
	Reason   string `json:"reason,omitempty"`
	Rows     int    `json:"rows"`
}
