package service

import (
	"fmt"
	"strconv"
	"strings"

	"potracker/internal/model"
)

// Question-title conventions shared with the generated order forms.
const (
	nameQuestionTitle  = "Your Name"
	emailQuestionTitle = "Your Email"
	quantityPrefix     = "Quantity: "
)

const (
	unknownCustomerName  = "Unknown"
	unknownCustomerEmail = "unknown@email.com"
)

type MappedLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
}

type MappedOrder struct {
	CustomerName  string
	CustomerEmail string
	Lines         []MappedLine
	TotalAmount   float64
	// Warnings carries quantity answers that named a product missing from the
	// catalog (renamed or deleted since the form was generated).
	Warnings []string
}

// IsOrder reports whether the response resolved to at least one positive
// quantity. Responses that did not are still marked consumed by the caller.
func (m MappedOrder) IsOrder() bool {
	return len(m.Lines) > 0
}

// MapResponse translates one form response into order fields using the
// question-title conventions above. Missing name/email answers fall back to
// sentinels rather than failing the import.
func MapResponse(questions []model.FormQuestion, answers map[string]string, catalog map[string]model.Product) MappedOrder {
	mapped := MappedOrder{
		CustomerName:  unknownCustomerName,
		CustomerEmail: unknownCustomerEmail,
	}

	for _, q := range questions {
		value, ok := answers[q.ID]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch {
		case q.Title == nameQuestionTitle:
			if value != "" {
				mapped.CustomerName = value
			}
		case q.Title == emailQuestionTitle:
			if value != "" {
				mapped.CustomerEmail = value
			}
		case strings.HasPrefix(q.Title, quantityPrefix):
			productName := strings.TrimSpace(strings.TrimPrefix(q.Title, quantityPrefix))
			qty, err := strconv.Atoi(value)
			if err != nil || qty <= 0 {
				continue
			}
			product, ok := catalog[productName]
			if !ok {
				mapped.Warnings = append(mapped.Warnings,
					fmt.Sprintf("product %q not found in catalog, line dropped", productName))
				continue
			}
			mapped.Lines = append(mapped.Lines, MappedLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    qty,
				UnitPrice:   product.Price,
			})
			mapped.TotalAmount += float64(qty) * product.Price
		}
	}

	return mapped
}
