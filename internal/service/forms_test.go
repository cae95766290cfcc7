package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potracker/internal/model"
)

func TestFormsClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/forms/form-1":
			_, _ = w.Write([]byte(`{
				"formId": "form-1",
				"items": [
					{"itemId": "i1", "title": "Your Name", "questionItem": {"question": {"questionId": "q1"}}},
					{"itemId": "i2", "title": "Just a text block"},
					{"itemId": "i3", "title": "Quantity: Widget", "questionItem": {"question": {"questionId": "q3"}}}
				]
			}`))
		case "/v1/forms/form-1/responses":
			_, _ = w.Write([]byte(`{
				"responses": [
					{"responseId": "r1", "answers": {"q1": {"questionId": "q1", "textAnswers": {"answers": [{"value": "Alice"}]}}}},
					{"responseId": "r2"}
				]
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewFormsClient(srv.URL, "test-token")
	ctx := context.Background()

	t.Run("definition flattens to question id and title", func(t *testing.T) {
		questions, err := client.GetFormDefinition(ctx, "form-1")
		require.NoError(t, err)

		assert.Equal(t, []model.FormQuestion{
			{ID: "q1", Title: "Your Name"},
			{ID: "q3", Title: "Quantity: Widget"},
		}, questions)
	})

	t.Run("responses surface answers and tolerate missing ones", func(t *testing.T) {
		responses, err := client.ListResponses(ctx, "form-1")
		require.NoError(t, err)
		require.Len(t, responses, 2)

		assert.Equal(t, map[string]string{"q1": "Alice"}, responses[0].TextValues())
		assert.Empty(t, responses[1].TextValues())
	})

	t.Run("non-200 surfaces status and body", func(t *testing.T) {
		_, err := client.ListResponses(ctx, "missing-form")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}
