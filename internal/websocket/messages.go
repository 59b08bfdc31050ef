package websocket

import "encoding/json"

// Inbound control message types.
const MessageTypeConfig = "config"

// ConfigMessage is the optional control frame a client sends near connection
// start to attach itself to a CRM entity.
type ConfigMessage struct {
	Type     string                 `json:"type"`
	ClientID *string                `json:"clientId"`
	Context  map[string]interface{} `json:"context"`
}

// Outbound event frames. Field names are part of the wire protocol.

// TranscriptEvent carries one accepted transcript segment.
type TranscriptEvent struct {
	Type      string  `json:"type"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
	IsFinal   bool    `json:"isFinal"`
}

// ActionItemEvent carries one newly derived action item.
type ActionItemEvent struct {
	Type string `json:"type"`
	Item string `json:"item"`
}

// RecommendationEvent carries one newly derived recommendation.
type RecommendationEvent struct {
	Type           string `json:"type"`
	Recommendation string `json:"recommendation"`
}

// SummaryUpdateEvent carries the replaced running summary.
type SummaryUpdateEvent struct {
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

func newTranscriptEvent(text string, timestamp float64) []byte {
	return marshalEvent(TranscriptEvent{Type: "transcript", Text: text, Timestamp: timestamp, IsFinal: true})
}

func newActionItemEvent(item string) []byte {
	return marshalEvent(ActionItemEvent{Type: "action_item", Item: item})
}

func newRecommendationEvent(recommendation string) []byte {
	return marshalEvent(RecommendationEvent{Type: "recommendation", Recommendation: recommendation})
}

func newSummaryUpdateEvent(summary string) []byte {
	return marshalEvent(SummaryUpdateEvent{Type: "summary_update", Summary: summary})
}

func marshalEvent(event interface{}) []byte {
	// The event structs only hold strings and numbers; marshaling cannot fail.
	payload, _ := json.Marshal(event)
	return payload
}
