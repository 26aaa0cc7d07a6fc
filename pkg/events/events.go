// Package events defines the structure for events that are published to Kafka.
package events

import "time"

// TurnEvent represents one completed pipeline turn, published for support analytics.
type TurnEvent struct {
	SessionID string    `json:"session_id"`
	Source    string    `json:"source"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"ts"`
}
