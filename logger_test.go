package mealplanner

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

func TestFileTranscriptLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFileTranscriptLogger(&buf)

	must.NoError(t, logger.LogTurn(TurnLog{
		Turn:      1,
		Timestamp: time.Now(),
		Stage:     "collecting_dietary",
		Input:     "vegetarian",
		Event:     "dietary_provided",
		Outbound:  []Message{{Type: MessageAssistant, Content: "Got it."}},
	}))
	must.NoError(t, logger.LogTurn(TurnLog{
		Turn:  2,
		Stage: "collecting_cuisine",
		Error: "classification failed",
	}))

	// Nothing hits the writer until Flush.
	should.Zero(t, buf.Len())

	must.NoError(t, logger.Flush())

	var doc struct {
		PlanningSession struct {
			Turns []TurnLog `json:"turns"`
		} `json:"planning_session"`
	}
	must.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	must.Len(t, doc.PlanningSession.Turns, 2)
	should.Equal(t, "collecting_dietary", doc.PlanningSession.Turns[0].Stage)
	should.Equal(t, "vegetarian", doc.PlanningSession.Turns[0].Input)
	should.Equal(t, "classification failed", doc.PlanningSession.Turns[1].Error)

	// Flushing drains the buffer; a second flush writes no further turns.
	buf.Reset()
	must.NoError(t, logger.Flush())
	must.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	should.Empty(t, doc.PlanningSession.Turns)
}

func TestNoOpTranscriptLogger(t *testing.T) {
	logger := NewNoOpTranscriptLogger()
	should.NoError(t, logger.LogTurn(TurnLog{Turn: 1}))
}

func TestNewTranscriptLogFilePath(t *testing.T) {
	path := NewTranscriptLogFilePath("mock")
	should.Contains(t, path, "./logs/")
	should.Contains(t, path, ".mock.json")
}
