package session

// Event is a structured occurrence derived from a user message or a tool
// response. The state machine advances only on events; all free-text
// non-determinism is classified away before an event is constructed.
type Event interface {
	// EventName identifies the event in logs.
	EventName() string
}

// DietaryProvided carries the user's dietary restrictions. An empty list is a
// valid answer ("none").
type DietaryProvided struct {
	Restrictions []string
}

func (DietaryProvided) EventName() string { return "dietary_provided" }

// CuisineProvided carries the user's cuisine preferences. An empty list means
// no preference.
type CuisineProvided struct {
	Cuisines []string
}

func (CuisineProvided) EventName() string { return "cuisine_provided" }

// MealCountProvided carries the number of dinners to plan.
type MealCountProvided struct {
	Count int
}

func (MealCountProvided) EventName() string { return "meal_count_provided" }

// SelectionProvided carries 1-based indices into the presented candidates.
type SelectionProvided struct {
	Indices []int
}

func (SelectionProvided) EventName() string { return "selection_provided" }

// ServingsProvided carries requested serving counts: one value applied to all
// selected recipes, or one value per recipe in selection order.
type ServingsProvided struct {
	Servings []int
}

func (ServingsProvided) EventName() string { return "servings_provided" }

// Clarification carries free text from the language model when the user's
// message did not fill the current slot. The session relays it and stays put.
type Clarification struct {
	Text string
}

func (Clarification) EventName() string { return "clarification" }

// Unintelligible means the capability's reply could not be classified at all.
// The session re-prompts in the same state.
type Unintelligible struct{}

func (Unintelligible) EventName() string { return "unintelligible" }
