package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// Tool is one capability exposed to the language model. Intent tools record a
// structured answer pulled out of free text; recipe_search calls the external
// lookup capability.
type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (output map[string]any, err error)
}

// Call is a tool invocation requested by the model.
type Call struct {
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}
