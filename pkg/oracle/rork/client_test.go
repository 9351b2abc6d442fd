package rork

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/oracle"
)

func testPrompts() Prompts {
	return Prompts{
		Analysis:  map[string]string{"EMS": "ems system prompt"},
		Checklist: "checklist system prompt",
	}
}

func completionServer(t *testing.T, completion string, capture *rorkRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text/llm/", r.URL.Path)
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		json.NewEncoder(w).Encode(rorkResponse{Completion: completion})
	}))
}

func TestAnalyzeSendsSystemPromptAndParses(t *testing.T) {
	var got rorkRequest
	srv := completionServer(t, "```json\n{\"summary\":\"chest pain\",\"category\":\"EMS\",\"urgency\":\"High\"}\n```", &got)
	defer srv.Close()

	client := NewClient(srv.URL, testPrompts())
	analysis, err := client.Analyze(context.Background(), oracle.AnalysisRequest{
		Transcript: "patient reports chest pain",
		Mode:       "EMS",
	})

	require.NoError(t, err)
	assert.Equal(t, "chest pain", analysis.Summary)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "ems system prompt", got.Messages[0].Content)
}

func TestAnalyzeUnknownModeFails(t *testing.T) {
	client := NewClient("http://127.0.0.1:0", testPrompts())

	_, err := client.Analyze(context.Background(), oracle.AnalysisRequest{Mode: "MARINE"})
	assert.Error(t, err)
}

func TestAnalyzeGarbageCompletionFallsBack(t *testing.T) {
	srv := completionServer(t, "no json here", nil)
	defer srv.Close()

	client := NewClient(srv.URL, testPrompts())
	analysis, err := client.Analyze(context.Background(), oracle.AnalysisRequest{
		Transcript: "anything",
		Mode:       "EMS",
	})

	require.NoError(t, err)
	assert.Equal(t, "Failed to parse AI response.", analysis.Summary)
	assert.Equal(t, "Error", analysis.Category)
}

func TestSuggestItemsParsesList(t *testing.T) {
	srv := completionServer(t, `{"items":[{"text":"obtain vitals","isCompleted":false}]}`, nil)
	defer srv.Close()

	client := NewClient(srv.URL, testPrompts())
	items, err := client.SuggestItems(context.Background(), "EMS", "some transcript", []checklist.Item{})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "obtain vitals", items[0].Text)
}

func TestSuggestItemsErrorOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testPrompts())
	_, err := client.SuggestItems(context.Background(), "EMS", "t", nil)
	assert.Error(t, err)
}
