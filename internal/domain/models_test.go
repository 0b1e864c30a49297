package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampLiteratureLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{name: "negative", input: -4, expected: 3},
		{name: "zero", input: 0, expected: 3},
		{name: "below range", input: 2, expected: 3},
		{name: "lower bound", input: 3, expected: 3},
		{name: "inside range", input: 4, expected: 4},
		{name: "upper bound", input: 5, expected: 5},
		{name: "above range", input: 50, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClampLiteratureLimit(tt.input))
		})
	}
}

func TestClampProviderLimit(t *testing.T) {
	assert.Equal(t, 1, ClampProviderLimit(0))
	assert.Equal(t, 1, ClampProviderLimit(1))
	assert.Equal(t, 3, ClampProviderLimit(3))
	assert.Equal(t, 5, ClampProviderLimit(9))
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "plain year", input: "2021", expected: 2021},
		{name: "padded year", input: " 2019 ", expected: 2019},
		{name: "blank", input: "", expected: FallbackYear},
		{name: "garbage", input: "circa 2020", expected: FallbackYear},
		{name: "float text", input: "2020.0", expected: FallbackYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseYear(tt.input))
		})
	}
}

func TestIsValidSourceType(t *testing.T) {
	assert.True(t, IsValidSourceType(SourceTypeSemanticScholar))
	assert.True(t, IsValidSourceType(SourceTypeArXiv))
	assert.True(t, IsValidSourceType(SourceTypeMock))
	assert.False(t, IsValidSourceType(SourceType("pubmed")))
}

func TestScoredPaper_ScoringText(t *testing.T) {
	t.Run("prefers abstract", func(t *testing.T) {
		p := ScoredPaper{Paper: Paper{Title: "T", Summary: "S"}, Abstract: "A"}
		assert.Equal(t, "T A", p.ScoringText())
	})

	t.Run("falls back to summary", func(t *testing.T) {
		p := ScoredPaper{Paper: Paper{Title: "T", Summary: "S"}}
		assert.Equal(t, "T S", p.ScoringText())
	})
}

func TestPapersAndVenueNames(t *testing.T) {
	scored := []ScoredPaper{
		{Paper: Paper{Title: "A", Year: 2020}, RelevanceScore: 3},
		{Paper: Paper{Title: "B", Year: 2021}, RelevanceScore: 2},
	}
	assert.Equal(t, []Paper{{Title: "A", Year: 2020}, {Title: "B", Year: 2021}}, Papers(scored))

	venues := []Venue{{Name: "ACL"}, {Name: "NeurIPS"}}
	assert.Equal(t, []string{"ACL", "NeurIPS"}, VenueNames(venues))
	assert.Empty(t, VenueNames(nil))
}

func TestPaper_JSONShape(t *testing.T) {
	data, err := json.Marshal(Paper{Title: "T", Summary: "S", Year: 2022})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"T","summary":"S","year":2022}`, string(data))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("query", "must be at least 2 characters")

	assert.Equal(t, "validation error: query: must be at least 2 characters", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidInput))

	wrapped := fmt.Errorf("handler: %w", err)
	var ve *ValidationError
	require.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "query", ve.Field)
}

func TestExternalAPIError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewExternalAPIError("arXiv", 503, "unavailable", cause)

	assert.Equal(t, "arXiv API error (status 503): unavailable", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestNewEvent(t *testing.T) {
	payload := IdeasGeneratedPayload{Domain: "control theory", FallbackIdeas: 5}

	evt, err := NewEvent(EventTypeIdeasGenerated, "control theory", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, 1, evt.EventVersion)
	assert.Equal(t, EventTypeIdeasGenerated, evt.EventType)
	assert.Equal(t, "control theory", evt.Key)
	assert.False(t, evt.CreatedAt.IsZero())

	var decoded IdeasGeneratedPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &decoded))
	assert.Equal(t, payload, decoded)
}
