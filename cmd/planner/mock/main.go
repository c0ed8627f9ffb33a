// Command mock runs a planning session on stdin/stdout with the
// deterministic language-model capability and local recipe fixtures. No
// network access needed; useful for demos and for exercising the full
// pipeline offline.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"mealplanner"
	"mealplanner/dispatch"
	"mealplanner/ingredient"
	llmmock "mealplanner/llm/mock"
	"mealplanner/lookup"
	"mealplanner/session"
	"mealplanner/shopping"
	"mealplanner/tools"
	"mealplanner/tools/storage"
)

// stdoutSink renders outbound messages for a terminal.
type stdoutSink struct{}

func (stdoutSink) Send(_ context.Context, msg mealplanner.Message) error {
	_, err := fmt.Printf("\n[%s] %s\n", msg.Type, msg.Content)
	return err
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	_ = godotenv.Load()

	var agentConfig mealplanner.AgentConfig
	if err := envdecode.Decode(&agentConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	resolver := newResolver(ctx, agentConfig.ArtifactsSynonymsPath)

	source := lookup.NewFixtureSource(storage.NewFileRecipeFixtureState(agentConfig.ArtifactsRecipesPath))
	registry, err := tools.NewRegistry(source)
	if err != nil {
		slog.Error("SETUP: Failed to create tool registry", "error", err)
		return
	}

	tlog, cleanup, err := newTranscriptLogger("mock")
	if err != nil {
		slog.Error("SETUP: Failed to create transcript logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("SETUP: Failed to flush transcript log", "error", err)
		}
	}()

	dispatcher := dispatch.NewDispatcher(
		llmmock.NewClient(),
		registry,
		time.Duration(agentConfig.ToolTimeoutSeconds)*time.Second,
	)

	sess, err := session.New(session.Config{
		Classifier:   dispatcher,
		Consolidator: shopping.NewConsolidator(resolver),
		Sink:         stdoutSink{},
		Transcript:   tlog,
	})
	if err != nil {
		slog.Error("SETUP: Failed to create session", "error", err)
		return
	}

	runner := session.NewRunner(sess, 16)
	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("RUNNER: Exited", "error", err)
		}
	}()

	if err := runner.Submit(ctx, session.Inbound{Type: session.InboundStart}); err != nil {
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := runner.Submit(ctx, session.Inbound{Type: session.InboundUserInput, Content: line}); err != nil {
			break
		}
	}

	if os.Getenv("DEBUG") != "" {
		mealplanner.Dump(sess.Stage(), sess.Candidates())
	}
}

// newResolver loads the synonym table from disk, falling back to the
// compiled-in defaults when the artifact is missing or malformed.
func newResolver(ctx context.Context, path string) *ingredient.Resolver {
	data, err := storage.NewFileSynonymState(path).Load(ctx)
	if err != nil {
		slog.Warn("SETUP: No synonym table artifact, using defaults", "path", path, "error", err)
		return ingredient.NewResolver(nil)
	}
	table, err := ingredient.ParseSynonyms(data)
	if err != nil {
		slog.Warn("SETUP: Bad synonym table artifact, using defaults", "path", path, "error", err)
		return ingredient.NewResolver(nil)
	}
	slog.Info("SETUP: Synonym table loaded", "entries", len(table))
	return ingredient.NewResolver(table)
}

func newTranscriptLogger(tag string) (mealplanner.TranscriptLogger, func() error, error) {
	logFilePath := mealplanner.NewTranscriptLogFilePath(tag)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := mealplanner.NewFileTranscriptLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
