package tools

import (
	"fmt"
)

// Registry maps tool names to implementations.
type Registry map[string]Tool

// NewRegistry creates the full tool set: the five intent tools the dispatch
// layer offers to the language model, plus recipe_search backed by the given
// source.
func NewRegistry(source RecipeSource) (*Registry, error) {
	if source == nil {
		return nil, fmt.Errorf("recipe source is required")
	}

	all := []Tool{
		NewSetDietary(),
		NewSetCuisines(),
		NewSetMealCount(),
		NewSelectRecipes(),
		NewSetServings(),
		NewRecipeSearch(source),
	}

	tools := make(map[string]Tool, len(all))
	for _, t := range all {
		tools[t.Name()] = t
	}

	registry := Registry(tools)
	return &registry, nil
}

// GetTools returns all tools in the registry as a slice.
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	return tools
}

// GetTool retrieves a tool by name from the registry.
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}
