// Package session drives the multi-turn meal-planning dialogue: it collects
// preferences, requests candidates from the lookup capability, records
// selections and serving counts, and hands the result to the consolidator.
// One Session belongs to one connection and is mutated only here.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"mealplanner"
	"mealplanner/llm"
	"mealplanner/lookup"
	"mealplanner/recipe"
	"mealplanner/shopping"
)

// Stage is the state of the conversation. String values double as the stage
// markers the dispatch layer embeds in capability prompts.
type Stage string

const (
	StageCollectingDietary    Stage = "collecting_dietary"
	StageCollectingCuisine    Stage = "collecting_cuisine"
	StageCollectingMealCount  Stage = "collecting_meal_count"
	StageAwaitingCandidates   Stage = "awaiting_candidates"
	StagePresentingCandidates Stage = "presenting_candidates"
	StageCollectingSelections Stage = "collecting_selections"
	StageCollectingServings   Stage = "collecting_servings"
	StageConsolidating        Stage = "consolidating"
	StageDone                 Stage = "done"
	StageError                Stage = "error"
)

// Preferences is the slot set collected before candidates are fetched.
type Preferences struct {
	Dietary   []string
	Cuisines  []string
	MealCount int
}

// Classifier is the tool dispatch layer as the session sees it: it turns the
// capability's interpretation of a user message into one Event, and it runs
// the recipe lookup. Both carry bounded timeouts internally.
type Classifier interface {
	Classify(ctx context.Context, transcript []llm.Message, stage Stage, input string) (Event, error)
	FetchCandidates(ctx context.Context, prefs Preferences) ([]recipe.Recipe, error)
}

// Config wires a Session's collaborators.
type Config struct {
	Classifier   Classifier
	Consolidator *shopping.Consolidator
	Sink         mealplanner.Sink
	Transcript   mealplanner.TranscriptLogger
	Notifier     mealplanner.Notifier // optional
	NotifyWith   string               // channel for the notifier
}

// Session is the per-connection conversation state. Not safe for concurrent
// use; the Runner guarantees one event at a time.
type Session struct {
	id    string
	stage Stage
	prefs Preferences

	// dietarySet and cuisineSet distinguish "answered with an empty list"
	// from "not asked yet"; MealCount > 0 serves the same purpose for its slot.
	dietarySet bool
	cuisineSet bool

	candidates []recipe.Recipe
	pending    []int // 1-based indices into candidates awaiting servings
	selections []shopping.Selection
	transcript []llm.Message
	turn       int

	classifier   Classifier
	consolidator *shopping.Consolidator
	sink         mealplanner.Sink
	tlog         mealplanner.TranscriptLogger
	notifier     mealplanner.Notifier
	notifyWith   string
}

func New(cfg Config) (*Session, error) {
	if cfg.Classifier == nil || cfg.Consolidator == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("classifier, consolidator, and sink are required")
	}
	tlog := cfg.Transcript
	if tlog == nil {
		tlog = mealplanner.NewNoOpTranscriptLogger()
	}
	return &Session{
		id:           uuid.NewString(),
		stage:        StageCollectingDietary,
		classifier:   cfg.Classifier,
		consolidator: cfg.Consolidator,
		sink:         cfg.Sink,
		tlog:         tlog,
		notifier:     cfg.Notifier,
		notifyWith:   cfg.NotifyWith,
	}, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Stage exposes the current stage, mainly for tests and instrumentation.
func (s *Session) Stage() Stage { return s.stage }

// Candidates exposes the current candidate list.
func (s *Session) Candidates() []recipe.Recipe { return s.candidates }

// Start initializes a fresh planning round and greets the user.
func (s *Session) Start(ctx context.Context) error {
	slog.Info("SESSION: Starting", "session_id", s.id)

	s.resetRound()
	s.transcript = nil

	tl := s.newTurnLog("")
	s.say(ctx, &tl, "Hi! I'll help you plan this week's dinners and build one shopping list. "+stagePrompt(StageCollectingDietary, nil))
	return s.logTurn(tl)
}

// HandleUserInput feeds one user message into the current stage. The message
// is fully processed, including any tool calls, before this returns; the
// Runner never delivers the next message concurrently.
func (s *Session) HandleUserInput(ctx context.Context, content string) error {
	s.turn++
	tl := s.newTurnLog(content)

	s.transcript = append(s.transcript, llm.Message{Role: "user", Content: content})

	// AwaitingCandidates is the only stage suspended on the lookup
	// capability; any user message there means "try again".
	if s.stage == StageAwaitingCandidates {
		s.fetchCandidates(ctx, &tl)
		return s.logTurn(tl)
	}

	ev, err := s.classifier.Classify(ctx, s.transcript, s.stage, content)
	if err != nil {
		slog.Warn("SESSION: Classification failed", "session_id", s.id, "stage", s.stage, "error", err)
		tl.Error = err.Error()
		s.sayError(ctx, &tl, "I'm having trouble reaching my assistant right now. Please try that again in a moment.")
		return s.logTurn(tl)
	}
	tl.Event = ev.EventName()

	s.apply(ctx, &tl, ev)
	return s.logTurn(tl)
}

func (s *Session) apply(ctx context.Context, tl *mealplanner.TurnLog, ev Event) {
	if s.stage == StageConsolidating {
		// Consolidation is synchronous; nothing to apply here.
		s.say(ctx, tl, "One moment, I'm still putting your list together.")
		return
	}

	switch ev := ev.(type) {
	case DietaryProvided:
		s.prefs.Dietary = ev.Restrictions
		s.dietarySet = true
		s.advance(ctx, tl)

	case CuisineProvided:
		s.prefs.Cuisines = ev.Cuisines
		s.cuisineSet = true
		s.advance(ctx, tl)

	case MealCountProvided:
		if ev.Count <= 0 {
			s.sayError(ctx, tl, "The number of dinners has to be at least 1. "+stagePrompt(StageCollectingMealCount, nil))
			return
		}
		s.prefs.MealCount = ev.Count
		s.advance(ctx, tl)

	case SelectionProvided:
		s.applySelection(ctx, tl, ev)

	case ServingsProvided:
		s.applyServings(ctx, tl, ev)

	case Clarification:
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			text = stagePrompt(s.stage, s.candidates)
		}
		s.say(ctx, tl, text)

	case Unintelligible:
		s.say(ctx, tl, "Sorry, I didn't catch that. "+stagePrompt(s.stage, s.candidates))

	default:
		slog.Warn("SESSION: Unhandled event", "session_id", s.id, "event", ev.EventName())
		s.say(ctx, tl, stagePrompt(s.stage, s.candidates))
	}
}

// advance re-derives the stage after a preference slot changed. A change to
// an already-answered slot is a revision: fetched candidates depended on it,
// so they are discarded and re-fetched once the slots are complete again.
func (s *Session) advance(ctx context.Context, tl *mealplanner.TurnLog) {
	if s.candidates != nil {
		slog.Info("SESSION: Preferences revised, discarding candidates", "session_id", s.id, "stage", s.stage)
		s.candidates = nil
		s.pending = nil
		s.selections = nil
	}

	next := s.nextSlot()
	s.stage = next

	if next == StageAwaitingCandidates {
		s.say(ctx, tl, "Great, let me find recipes that match your preferences...")
		s.fetchCandidates(ctx, tl)
		return
	}
	s.say(ctx, tl, stagePrompt(next, nil))
}

// nextSlot returns the first unfilled collection stage, or AwaitingCandidates
// when every slot is filled.
func (s *Session) nextSlot() Stage {
	switch {
	case !s.dietarySet:
		return StageCollectingDietary
	case !s.cuisineSet:
		return StageCollectingCuisine
	case s.prefs.MealCount <= 0:
		return StageCollectingMealCount
	default:
		return StageAwaitingCandidates
	}
}

func (s *Session) applySelection(ctx context.Context, tl *mealplanner.TurnLog, ev SelectionProvided) {
	if s.stage != StagePresentingCandidates && s.stage != StageCollectingSelections {
		s.say(ctx, tl, stagePrompt(s.stage, s.candidates))
		return
	}

	indices := dedupe(ev.Indices)
	for _, i := range indices {
		if i < 1 || i > len(s.candidates) {
			s.sayError(ctx, tl, fmt.Sprintf("I don't have a recipe number %d. Pick numbers between 1 and %d.", i, len(s.candidates)))
			return
		}
	}
	if len(indices) != s.prefs.MealCount {
		s.stage = StageCollectingSelections
		s.sayError(ctx, tl, fmt.Sprintf("You're planning %d dinners but picked %d recipes. Please pick exactly %d.", s.prefs.MealCount, len(indices), s.prefs.MealCount))
		return
	}

	s.pending = indices
	s.stage = StageCollectingServings
	s.say(ctx, tl, stagePrompt(StageCollectingServings, nil))
}

func (s *Session) applyServings(ctx context.Context, tl *mealplanner.TurnLog, ev ServingsProvided) {
	if s.stage != StageCollectingServings {
		s.say(ctx, tl, stagePrompt(s.stage, s.candidates))
		return
	}

	servings := ev.Servings
	switch {
	case len(servings) == 1:
		// One count applied to every selected recipe.
		for len(servings) < len(s.pending) {
			servings = append(servings, servings[0])
		}
	case len(servings) != len(s.pending):
		s.sayError(ctx, tl, fmt.Sprintf("Give me one serving count, or one per recipe (%d values).", len(s.pending)))
		return
	}
	for _, n := range servings {
		if n <= 0 {
			s.sayError(ctx, tl, "Serving counts have to be at least 1. "+stagePrompt(StageCollectingServings, nil))
			return
		}
	}

	s.selections = s.selections[:0]
	for i, idx := range s.pending {
		s.selections = append(s.selections, shopping.Selection{
			Recipe:   s.candidates[idx-1],
			Servings: servings[i],
		})
	}

	s.consolidate(ctx, tl)
}

func (s *Session) consolidate(ctx context.Context, tl *mealplanner.TurnLog) {
	s.stage = StageConsolidating

	entries, err := s.consolidator.Consolidate(s.selections)
	if err != nil {
		if errors.Is(err, recipe.ErrInvalidServings) {
			s.stage = StageCollectingServings
			s.sayError(ctx, tl, "Those serving counts didn't work out. "+stagePrompt(StageCollectingServings, nil))
			return
		}
		slog.Error("SESSION: Consolidation failed", "session_id", s.id, "error", err)
		tl.Error = err.Error()
		s.stage = StageCollectingServings
		s.sayError(ctx, tl, "Something went wrong building your list. Let's try the serving counts again.")
		return
	}

	final := s.renderPlan(entries)
	s.stage = StageDone
	s.say(ctx, tl, final)

	if s.notifier != nil {
		if err := s.notifier.PostMessage(ctx, s.notifyWith, final); err != nil {
			slog.Warn("SESSION: Failed to post plan notification", "session_id", s.id, "error", err)
		}
	}

	// Done is terminal for the round, not the connection: reset for another
	// planning round on the same session.
	s.resetRound()
	s.say(ctx, tl, "That's your week sorted! Want to plan another? "+stagePrompt(StageCollectingDietary, nil))
}

func (s *Session) renderPlan(entries []shopping.Entry) string {
	var b strings.Builder
	b.WriteString("Here's your dinner plan:\n")
	for _, sel := range s.selections {
		fmt.Fprintf(&b, "- %s (%d servings)", sel.Recipe.Title, sel.Servings)
		if sel.Recipe.URL != "" {
			fmt.Fprintf(&b, " - %s", sel.Recipe.URL)
		}
		b.WriteString("\n")
	}
	if len(s.prefs.Dietary) > 0 {
		fmt.Fprintf(&b, "Dietary restrictions: %s\n", strings.Join(s.prefs.Dietary, ", "))
	}
	b.WriteString("\nShopping list:\n")
	b.WriteString(shopping.Render(entries))

	if unscaled := shopping.Unscaled(entries); len(unscaled) > 0 {
		b.WriteString("\n\nI couldn't scale these automatically, check their amounts:\n")
		for _, raw := range unscaled {
			fmt.Fprintf(&b, "- %s\n", raw)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Session) fetchCandidates(ctx context.Context, tl *mealplanner.TurnLog) {
	s.stage = StageAwaitingCandidates

	recipes, err := s.classifier.FetchCandidates(ctx, s.prefs)
	switch {
	case errors.Is(err, lookup.ErrNoResults):
		// Broaden the criteria: re-collect cuisine and try again.
		s.cuisineSet = false
		s.stage = StageCollectingCuisine
		s.sayError(ctx, tl, "I couldn't find any recipes matching those preferences. Let's broaden the search. "+stagePrompt(StageCollectingCuisine, nil))
	case err != nil:
		slog.Warn("SESSION: Recipe lookup failed", "session_id", s.id, "error", err)
		tl.Error = err.Error()
		s.sayError(ctx, tl, "The recipe service isn't responding right now. Say anything to retry; your answers are saved.")
	default:
		s.candidates = recipes
		s.stage = StagePresentingCandidates
		s.say(ctx, tl, formatCandidates(recipes)+"\n\n"+stagePrompt(StagePresentingCandidates, recipes))
	}
}

// resetRound clears round state but keeps the transcript so follow-up rounds
// stay conversational.
func (s *Session) resetRound() {
	s.stage = StageCollectingDietary
	s.prefs = Preferences{}
	s.dietarySet = false
	s.cuisineSet = false
	s.candidates = nil
	s.pending = nil
	s.selections = nil
}

func (s *Session) newTurnLog(input string) mealplanner.TurnLog {
	return mealplanner.TurnLog{
		Turn:      s.turn,
		Timestamp: time.Now(),
		Stage:     string(s.stage),
		Input:     input,
	}
}

func (s *Session) logTurn(tl mealplanner.TurnLog) error {
	if err := s.tlog.LogTurn(tl); err != nil {
		slog.Error("SESSION: Failed to log turn", "session_id", s.id, "turn", tl.Turn, "error", err)
	}
	return nil
}

func (s *Session) say(ctx context.Context, tl *mealplanner.TurnLog, text string) {
	s.deliver(ctx, tl, mealplanner.Message{Type: mealplanner.MessageAssistant, Content: text})
	s.transcript = append(s.transcript, llm.Message{Role: "assistant", Content: text})
}

func (s *Session) sayError(ctx context.Context, tl *mealplanner.TurnLog, text string) {
	s.deliver(ctx, tl, mealplanner.Message{Type: mealplanner.MessageError, Content: text})
}

func (s *Session) deliver(ctx context.Context, tl *mealplanner.TurnLog, msg mealplanner.Message) {
	tl.Outbound = append(tl.Outbound, msg)
	if err := s.sink.Send(ctx, msg); err != nil {
		// The connection is gone; the runner tears the session down via ctx.
		slog.Warn("SESSION: Failed to deliver message", "session_id", s.id, "error", err)
	}
}

func stagePrompt(stage Stage, candidates []recipe.Recipe) string {
	switch stage {
	case StageCollectingDietary:
		return "Any dietary restrictions I should know about (vegetarian, gluten-free, ...)? Say \"none\" if not."
	case StageCollectingCuisine:
		return "What cuisines are you in the mood for this week (Italian, Mexican, ...)? Say \"any\" for no preference."
	case StageCollectingMealCount:
		return "How many dinners should I plan?"
	case StageAwaitingCandidates:
		return "Searching for recipes..."
	case StagePresentingCandidates, StageCollectingSelections:
		return fmt.Sprintf("Which would you like to cook? Give me their numbers (1-%d), separated by commas.", len(candidates))
	case StageCollectingServings:
		return "How many servings do you need? One number for all recipes, or one per recipe in order."
	default:
		return "Let's keep going."
	}
}

func formatCandidates(recipes []recipe.Recipe) string {
	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	for i, r := range recipes {
		fmt.Fprintf(&b, "%d. %s (serves %d", i+1, r.Title, r.SourceServings)
		if r.TotalTime > 0 {
			fmt.Fprintf(&b, ", %d min", r.TotalTime)
		}
		b.WriteString(")")
		if len(r.CuisineTypes) > 0 {
			fmt.Fprintf(&b, " - %s", strings.Join(r.CuisineTypes, ", "))
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "\n   %s", r.URL)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func dedupe(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
