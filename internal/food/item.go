package food

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Item is one food available for selection. It is a read-only value; the
// zero Item is not valid and is only produced by mistake.
type Item struct {
	description string
	calories    float64
	weight      float64
}

// NewItem validates and builds an Item. Weight is expected to be
// non-negative but is not enforced; the filter discards unusable weights.
func NewItem(description string, calories, weight float64) (Item, error) {
	if strings.TrimSpace(description) == "" {
		return Item{}, ErrEmptyDescription
	}
	if math.IsNaN(calories) || calories <= 0 {
		return Item{}, fmt.Errorf("%w: got %v", ErrInvalidCalories, calories)
	}
	return Item{
		description: description,
		calories:    calories,
		weight:      weight,
	}, nil
}

// MustItem is like NewItem but panics on invalid input.
func MustItem(description string, calories, weight float64) Item {
	item, err := NewItem(description, calories, weight)
	if err != nil {
		panic(fmt.Sprintf("food: invalid item %q: %v", description, err))
	}
	return item
}

// Description returns the human-readable name, e.g. "spicy chicken breast".
func (i Item) Description() string { return i.description }

// Calories returns the calorie cost.
func (i Item) Calories() float64 { return i.calories }

// Weight returns the weight in ounces.
func (i Item) Weight() float64 { return i.weight }

// WeightPerCalorie is the greedy priority metric.
func (i Item) WeightPerCalorie() float64 { return i.weight / i.calories }

func (i Item) String() string {
	return fmt.Sprintf("%s (%g cal, %g oz)", i.description, i.calories, i.weight)
}

// itemDocument is the wire form used for JSON and YAML.
type itemDocument struct {
	Description string  `json:"description" yaml:"description"`
	Calories    float64 `json:"calories" yaml:"calories"`
	Weight      float64 `json:"weight" yaml:"weight"`
}

func (i Item) document() itemDocument {
	return itemDocument{Description: i.description, Calories: i.calories, Weight: i.weight}
}

// MarshalJSON implements json.Marshaler.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.document())
}

// UnmarshalJSON implements json.Unmarshaler; decoded items are validated.
func (i *Item) UnmarshalJSON(data []byte) error {
	var doc itemDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	item, err := NewItem(doc.Description, doc.Calories, doc.Weight)
	if err != nil {
		return err
	}
	*i = item
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (i Item) MarshalYAML() (any, error) {
	return i.document(), nil
}
