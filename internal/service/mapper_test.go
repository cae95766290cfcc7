package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"potracker/internal/model"
)

func widgetCatalog() map[string]model.Product {
	return map[string]model.Product{
		"Widget": {ID: "p1", Name: "Widget", Price: 10.00},
		"Gadget": {ID: "p2", Name: "Gadget", Price: 2.50},
	}
}

func orderFormQuestions() []model.FormQuestion {
	return []model.FormQuestion{
		{ID: "q1", Title: "Your Name"},
		{ID: "q2", Title: "Your Email"},
		{ID: "q3", Title: "Quantity: Widget"},
		{ID: "q4", Title: "Quantity: Gadget"},
	}
}

func TestMapResponse(t *testing.T) {
	t.Run("maps name, email and quantities", func(t *testing.T) {
		mapped := MapResponse(orderFormQuestions(), map[string]string{
			"q1": "Alice",
			"q2": "a@x.com",
			"q3": "3",
		}, widgetCatalog())

		assert.Equal(t, "Alice", mapped.CustomerName)
		assert.Equal(t, "a@x.com", mapped.CustomerEmail)
		require.Len(t, mapped.Lines, 1)
		assert.Equal(t, "p1", mapped.Lines[0].ProductID)
		assert.Equal(t, 3, mapped.Lines[0].Quantity)
		assert.Equal(t, 10.00, mapped.Lines[0].UnitPrice)
		assert.Equal(t, 30.00, mapped.TotalAmount)
		assert.True(t, mapped.IsOrder())
	})

	t.Run("missing name and email fall back to sentinels", func(t *testing.T) {
		mapped := MapResponse(orderFormQuestions(), map[string]string{
			"q3": "1",
		}, widgetCatalog())

		assert.Equal(t, "Unknown", mapped.CustomerName)
		assert.Equal(t, "unknown@email.com", mapped.CustomerEmail)
		assert.True(t, mapped.IsOrder())
	})

	t.Run("zero and invalid quantities produce no order", func(t *testing.T) {
		for _, value := range []string{"0", "-2", "abc", ""} {
			mapped := MapResponse(orderFormQuestions(), map[string]string{
				"q1": "Bob",
				"q3": value,
			}, widgetCatalog())
			assert.False(t, mapped.IsOrder(), "value %q should not produce an order", value)
		}
	})

	t.Run("absent quantity answers produce no order", func(t *testing.T) {
		mapped := MapResponse(orderFormQuestions(), map[string]string{
			"q1": "Bob",
			"q2": "b@x.com",
		}, widgetCatalog())
		assert.False(t, mapped.IsOrder())
	})

	t.Run("unknown product is dropped with a warning", func(t *testing.T) {
		questions := append(orderFormQuestions(), model.FormQuestion{ID: "q5", Title: "Quantity: Retired Thing"})
		mapped := MapResponse(questions, map[string]string{
			"q3": "2",
			"q5": "4",
		}, widgetCatalog())

		require.Len(t, mapped.Lines, 1)
		assert.Equal(t, 20.00, mapped.TotalAmount)
		require.Len(t, mapped.Warnings, 1)
		assert.Contains(t, mapped.Warnings[0], "Retired Thing")
	})

	t.Run("multiple products accumulate the total", func(t *testing.T) {
		mapped := MapResponse(orderFormQuestions(), map[string]string{
			"q3": "2",
			"q4": "4",
		}, widgetCatalog())

		require.Len(t, mapped.Lines, 2)
		assert.Equal(t, 30.00, mapped.TotalAmount)
	})
}
