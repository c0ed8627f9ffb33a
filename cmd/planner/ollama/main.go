// Command ollama runs a planning session on stdin/stdout with a local Ollama
// model as the language-model capability. The recipe lookup uses the live
// search API when credentials are configured and falls back to local
// fixtures otherwise.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"mealplanner"
	"mealplanner/dispatch"
	"mealplanner/ingredient"
	"mealplanner/llm/ollama"
	"mealplanner/lookup"
	"mealplanner/session"
	"mealplanner/shopping"
	"mealplanner/tools"
	"mealplanner/tools/storage"
)

type stdoutSink struct{}

func (stdoutSink) Send(_ context.Context, msg mealplanner.Message) error {
	_, err := fmt.Printf("\n[%s] %s\n", msg.Type, msg.Content)
	return err
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	_ = godotenv.Load()

	var modelConfig mealplanner.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	var agentConfig mealplanner.AgentConfig
	if err := envdecode.Decode(&agentConfig); err != nil {
		log.Fatalf("SETUP: Failed to decode: %s", err)
	}

	synonymState, fixtureState, err := newArtifactStates(ctx, agentConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create artifact stores", "error", err)
		return
	}
	resolver := newResolver(ctx, synonymState)

	source, err := newRecipeSource(agentConfig, fixtureState)
	if err != nil {
		slog.Error("SETUP: Failed to create recipe source", "error", err)
		return
	}

	registry, err := tools.NewRegistry(source)
	if err != nil {
		slog.Error("SETUP: Failed to create tool registry", "error", err)
		return
	}

	llmClient, err := ollama.NewClient(ollama.ClientOpts{
		BaseEndpoint: agentConfig.BaseOllamaEndpoint,
		ModelID:      modelConfig.ModelID,
		Temperature:  float64(modelConfig.Temperature),
		TopP:         float64(modelConfig.TopP),
		HTTPClient:   http.DefaultClient,
	})
	if err != nil {
		slog.Error("SETUP: Failed to create LLM client", "error", err)
		return
	}

	tlog, cleanup, err := newTranscriptLogger(modelConfig.ModelID)
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
		llmClient,
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
}

// newArtifactStates picks where the synonym table and recipe fixtures live:
// the local filesystem by default, S3 when a bucket is configured.
func newArtifactStates(ctx context.Context, cfg mealplanner.AgentConfig) (storage.SynonymState, storage.RecipeFixtureState, error) {
	if cfg.ArtifactsS3Bucket == "" {
		return storage.NewFileSynonymState(cfg.ArtifactsSynonymsPath),
			storage.NewFileRecipeFixtureState(cfg.ArtifactsRecipesPath), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	s3Client := s3.NewFromConfig(awsCfg)
	return storage.NewS3SynonymState(s3Client, cfg.ArtifactsS3Bucket, cfg.ArtifactsSynonymsPath),
		storage.NewS3RecipeFixtureState(s3Client, cfg.ArtifactsS3Bucket, cfg.ArtifactsRecipesPath), nil
}

func newRecipeSource(cfg mealplanner.AgentConfig, fixtureState storage.RecipeFixtureState) (tools.RecipeSource, error) {
	if cfg.LookupAppID == "" {
		slog.Info("SETUP: No lookup credentials, serving recipe fixtures", "path", cfg.ArtifactsRecipesPath)
		return lookup.NewFixtureSource(fixtureState), nil
	}
	return lookup.NewClient(lookup.ClientOpts{
		BaseURL:    cfg.LookupBaseURL,
		AppID:      cfg.LookupAppID,
		AppKey:     cfg.LookupAppKey,
		UserID:     cfg.LookupUserID,
		MaxResults: cfg.MaxCandidates,
		HTTPClient: http.DefaultClient,
	})
}

func newResolver(ctx context.Context, state storage.SynonymState) *ingredient.Resolver {
	data, err := state.Load(ctx)
	if err != nil {
		slog.Warn("SETUP: No synonym table artifact, using defaults", "error", err)
		return ingredient.NewResolver(nil)
	}
	table, err := ingredient.ParseSynonyms(data)
	if err != nil {
		slog.Warn("SETUP: Bad synonym table artifact, using defaults", "error", err)
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
