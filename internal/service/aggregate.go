package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/darkodi/foodgram/internal/model"
)

// AggregateIngredients sums amounts per ingredient across all lines.
// Lines are keyed by ingredient id, so two ingredients sharing a name stay
// separate. The result is sorted by name, then id, whatever the input order.
func AggregateIngredients(lines []model.IngredientLine) []model.IngredientTotal {
	totals := make(map[int64]*model.IngredientTotal)
	for _, line := range lines {
		t, ok := totals[line.IngredientID]
		if !ok {
			t = &model.IngredientTotal{
				IngredientID:    line.IngredientID,
				Name:            line.Name,
				MeasurementUnit: line.MeasurementUnit,
			}
			totals[line.IngredientID] = t
		}
		t.Amount += line.Amount
	}

	result := make([]model.IngredientTotal, 0, len(totals))
	for _, t := range totals {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].IngredientID < result[j].IngredientID
	})
	return result
}

// RenderShoppingList formats totals as one "<name> <amount>" line each.
// No totals render as an empty report.
func RenderShoppingList(totals []model.IngredientTotal) string {
	var b strings.Builder
	for _, t := range totals {
		b.WriteString(t.Name)
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(t.Amount))
		b.WriteByte('\n')
	}
	return b.String()
}
