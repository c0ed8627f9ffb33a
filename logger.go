package mealplanner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// TranscriptLogger is the interface for session transcript logging.
type TranscriptLogger interface {
	LogTurn(turn TurnLog) error
}

// NewTranscriptLogFilePath returns a file path keyed by session ID so runs of
// concurrent sessions produce separate logs.
func NewTranscriptLogFilePath(sessionID string) string {
	return fmt.Sprintf("./logs/%d.%s.json", time.Now().Unix(), sessionID)
}

// TurnLog records one fully processed inbound event: the stage it arrived in,
// the classified event, and every outbound message it produced.
type TurnLog struct {
	Turn      int       `json:"turn"`
	Timestamp time.Time `json:"timestamp"`
	Stage     string    `json:"stage"`
	Input     string    `json:"input,omitempty"`
	Event     string    `json:"event,omitempty"`
	Outbound  []Message `json:"outbound,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileTranscriptLogger accumulates turns and flushes them as one JSON
// document at the end of the session.
type FileTranscriptLogger struct {
	turns  []TurnLog
	writer io.Writer
}

func NewFileTranscriptLogger(writer io.Writer) *FileTranscriptLogger {
	return &FileTranscriptLogger{
		turns:  make([]TurnLog, 0),
		writer: writer,
	}
}

// LogTurn buffers a turn; nothing is written until Flush.
func (l *FileTranscriptLogger) LogTurn(turn TurnLog) error {
	l.turns = append(l.turns, turn)
	return nil
}

// Flush writes all accumulated turns to the writer.
func (l *FileTranscriptLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"planning_session": map[string]any{
			"timestamp": time.Now(),
			"turns":     l.turns,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write transcript log: %w", err)
	}

	l.turns = l.turns[:0]
	return nil
}

// NoOpTranscriptLogger discards all log entries.
type NoOpTranscriptLogger struct{}

func NewNoOpTranscriptLogger() *NoOpTranscriptLogger {
	return &NoOpTranscriptLogger{}
}

func (n *NoOpTranscriptLogger) LogTurn(turn TurnLog) error {
	return nil
}

// StdoutTranscriptLogger writes each turn as a JSON line to stdout.
type StdoutTranscriptLogger struct{}

func NewStdoutTranscriptLogger() *StdoutTranscriptLogger {
	return &StdoutTranscriptLogger{}
}

func (l *StdoutTranscriptLogger) LogTurn(turn TurnLog) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
