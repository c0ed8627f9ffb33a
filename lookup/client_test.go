package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"
)

const searchResponse = `{
	"hits": [
		{"recipe": {
			"uri": "http://www.edamam.com/ontologies/edamam.owl#recipe_abc123",
			"label": "Chana Masala",
			"url": "https://example.com/chana-masala",
			"image": "https://example.com/chana-masala.jpg",
			"cuisineType": ["indian"],
			"ingredientLines": ["2 cups cooked chickpeas", "1 onion, diced"],
			"yield": 4,
			"totalTime": 40
		}},
		{"recipe": {
			"uri": "http://www.edamam.com/ontologies/edamam.owl#recipe_def456",
			"label": "Red Lentil Soup",
			"url": "https://example.com/lentil-soup",
			"cuisineType": ["mediterranean"],
			"ingredientLines": ["2 cups red lentils"],
			"yield": 0,
			"totalTime": 0
		}}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOpts{
		BaseURL:    server.URL,
		AppID:      "test-app",
		AppKey:     "test-key",
		UserID:     "test-user",
		MaxTries:   1,
		HTTPClient: http.DefaultClient,
	})
	must.NoError(t, err)
	return client
}

func TestSearch(t *testing.T) {
	var gotQuery string
	var gotHealth, gotCuisine []string
	var gotUser string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = q.Get("q")
		gotHealth = q["health"]
		gotCuisine = q["cuisineType"]
		gotUser = r.Header.Get("Edamam-Account-User")
		fmt.Fprint(w, searchResponse)
	})

	recipes, err := client.Search(context.Background(), "indian dinner", []string{"vegetarian"}, []string{"indian"})
	must.NoError(t, err)

	should.Equal(t, "indian dinner", gotQuery)
	should.Equal(t, []string{"vegetarian"}, gotHealth)
	should.Equal(t, []string{"indian"}, gotCuisine)
	should.Equal(t, "test-user", gotUser)

	must.Len(t, recipes, 2)
	should.Equal(t, "recipe_abc123", recipes[0].ID)
	should.Equal(t, "Chana Masala", recipes[0].Title)
	should.Equal(t, 4, recipes[0].SourceServings)
	should.Equal(t, []string{"2 cups cooked chickpeas", "1 onion, diced"}, recipes[0].IngredientLines)
	should.Equal(t, 40, recipes[0].TotalTime)

	// Unknown yield defaults to a single serving rather than zero.
	should.Equal(t, 1, recipes[1].SourceServings)
}

func TestSearchMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchResponse)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOpts{BaseURL: server.URL, MaxResults: 1, MaxTries: 1})
	must.NoError(t, err)

	recipes, err := client.Search(context.Background(), "dinner", nil, nil)
	must.NoError(t, err)
	should.Len(t, recipes, 1)
}

func TestSearchNoResults(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "404 from the API",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "empty hits",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"hits": []}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Search(context.Background(), "dinner", nil, nil)
			must.ErrorIs(t, err, ErrNoResults)
			should.NotErrorIs(t, err, ErrServiceUnavailable)
		})
	}
}

func TestSearchServiceUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "auth failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"hits": `)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Search(context.Background(), "dinner", nil, nil)
			must.ErrorIs(t, err, ErrServiceUnavailable)
		})
	}
}

func TestSearchRetriesTransientFailures(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, searchResponse)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOpts{BaseURL: server.URL, MaxTries: 3})
	must.NoError(t, err)

	recipes, err := client.Search(context.Background(), "dinner", nil, nil)
	must.NoError(t, err)
	should.Len(t, recipes, 2)
	should.Equal(t, 2, calls)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientOpts{})
	must.Error(t, err)
}
