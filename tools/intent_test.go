package tools

import (
	"context"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

func TestSetDietary_Run(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    []string
		wantErr bool
	}{
		{
			name:  "normalizes entries",
			input: map[string]any{"restrictions": []any{" Vegetarian ", "GLUTEN-FREE"}},
			want:  []string{"vegetarian", "gluten-free"},
		},
		{
			name:  "empty list is a valid answer",
			input: map[string]any{"restrictions": []any{}},
			want:  []string{},
		},
		{
			name:  "blank entries dropped",
			input: map[string]any{"restrictions": []any{"vegan", "  "}},
			want:  []string{"vegan"},
		},
		{
			name:    "missing field",
			input:   map[string]any{},
			wantErr: true,
		},
		{
			name:    "wrong element type",
			input:   map[string]any{"restrictions": []any{42.0}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewSetDietary().Run(context.Background(), tt.input)
			if tt.wantErr {
				must.Error(t, err)
				return
			}
			must.NoError(t, err)
			should.Equal(t, tt.want, out["restrictions"])
		})
	}
}

func TestSetMealCount_Run(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    int
		wantErr bool
	}{
		{name: "valid count", input: map[string]any{"count": 3.0}, want: 3},
		{name: "zero rejected", input: map[string]any{"count": 0.0}, wantErr: true},
		{name: "negative rejected", input: map[string]any{"count": -2.0}, wantErr: true},
		{name: "fractional rejected", input: map[string]any{"count": 2.5}, wantErr: true},
		{name: "non-number rejected", input: map[string]any{"count": "three"}, wantErr: true},
		{name: "missing field", input: map[string]any{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewSetMealCount().Run(context.Background(), tt.input)
			if tt.wantErr {
				must.Error(t, err)
				return
			}
			must.NoError(t, err)
			should.Equal(t, tt.want, out["count"])
		})
	}
}

func TestSelectRecipes_Run(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    []int
		wantErr bool
	}{
		{name: "valid indices", input: map[string]any{"indices": []any{1.0, 3.0}}, want: []int{1, 3}},
		{name: "empty rejected", input: map[string]any{"indices": []any{}}, wantErr: true},
		{name: "zero index rejected", input: map[string]any{"indices": []any{0.0}}, wantErr: true},
		{name: "fractional rejected", input: map[string]any{"indices": []any{1.5}}, wantErr: true},
		{name: "missing field", input: map[string]any{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewSelectRecipes().Run(context.Background(), tt.input)
			if tt.wantErr {
				must.Error(t, err)
				return
			}
			must.NoError(t, err)
			should.Equal(t, tt.want, out["indices"])
		})
	}
}

func TestSetServings_Run(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		want    []int
		wantErr bool
	}{
		{name: "single count", input: map[string]any{"servings": []any{4.0}}, want: []int{4}},
		{name: "per recipe counts", input: map[string]any{"servings": []any{2.0, 4.0, 6.0}}, want: []int{2, 4, 6}},
		{name: "empty rejected", input: map[string]any{"servings": []any{}}, wantErr: true},
		{name: "zero rejected", input: map[string]any{"servings": []any{0.0}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewSetServings().Run(context.Background(), tt.input)
			if tt.wantErr {
				must.Error(t, err)
				return
			}
			must.NoError(t, err)
			should.Equal(t, tt.want, out["servings"])
		})
	}
}
