// Package report renders catalogs and solver results for people and scripts.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/maxweight/internal/food"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported formats.
func Formats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Summary is a titled list of items with their totals.
type Summary struct {
	Title         string       `json:"title" yaml:"title"`
	Strategy      string       `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	CalorieBudget *float64     `json:"calorieBudget,omitempty" yaml:"calorie_budget,omitempty"`
	Items         food.Catalog `json:"items" yaml:"items"`
	TotalCalories float64      `json:"totalCalories" yaml:"total_calories"`
	TotalWeight   float64      `json:"totalWeight" yaml:"total_weight"`
}

// NewSummary aggregates items under title.
func NewSummary(title string, items food.Catalog) Summary {
	calories, weight := items.Totals()
	if items == nil {
		items = food.Catalog{}
	}
	return Summary{
		Title:         title,
		Items:         items,
		TotalCalories: calories,
		TotalWeight:   weight,
	}
}

// Render writes s to w in the requested format.
func Render(w io.Writer, format Format, s Summary) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		_, err := io.WriteString(w, renderTable(s))
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

func renderTable(s Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("*** %s ***", s.Title)))
	b.WriteString("\n")

	if len(s.Items) == 0 {
		b.WriteString("[empty food list]\n")
	} else {
		b.WriteString(itemTable(s.Items))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "> Grand total calories: %s\n", formatNumber(s.TotalCalories))
	fmt.Fprintf(&b, "> Grand total weight: %s ounces\n", formatNumber(s.TotalWeight))
	return b.String()
}

func itemTable(items food.Catalog) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Description(),
			formatNumber(item.Calories()),
			formatNumber(item.Weight()),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Description", "Calories", "Weight (oz)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col > 0:
				return numberStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
