package entities

import "time"

// Recording is the durable artifact of a finished session, handed to the
// archive collaborator after the connection closes.
type Recording struct {
	SessionID       string                 `bson:"session_id"`
	ClientID        string                 `bson:"client_id,omitempty"`
	ClientContext   map[string]interface{} `bson:"client_context,omitempty"`
	Transcript      string                 `bson:"transcript"`
	Segments        []string               `bson:"segments"`
	ActionItems     []string               `bson:"action_items"`
	Recommendations []string               `bson:"recommendations"`
	Summary         string                 `bson:"summary"`
	StartedAt       time.Time              `bson:"started_at"`
	EndedAt         time.Time              `bson:"ended_at"`
}

// RecordingFromSession snapshots a closing session into its archive form.
func RecordingFromSession(s *Session) *Recording {
	actionItems := make([]string, 0, len(s.EmittedActionItems))
	for item := range s.EmittedActionItems {
		actionItems = append(actionItems, item)
	}
	recommendations := make([]string, 0, len(s.EmittedRecommendations))
	for rec := range s.EmittedRecommendations {
		recommendations = append(recommendations, rec)
	}

	return &Recording{
		SessionID:       s.ID,
		ClientID:        s.ClientID,
		ClientContext:   s.ClientContext,
		Transcript:      s.FullTranscript(),
		Segments:        append([]string(nil), s.TranscriptSegments...),
		ActionItems:     actionItems,
		Recommendations: recommendations,
		Summary:         s.CurrentSummary,
		StartedAt:       s.StartedAt,
		EndedAt:         time.Now(),
	}
}
