package food

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		description string
		calories    float64
		weight      float64
		wantErr     error
	}{
		{name: "Valid", description: "test whole corn", calories: 100, weight: 20},
		{name: "ZeroWeightAllowed", description: "water", calories: 1, weight: 0},
		{name: "NegativeWeightAllowed", description: "balloon", calories: 1, weight: -3},
		{name: "EmptyDescription", description: "", calories: 10, weight: 1, wantErr: ErrEmptyDescription},
		{name: "BlankDescription", description: "   ", calories: 10, weight: 1, wantErr: ErrEmptyDescription},
		{name: "ZeroCalories", description: "air", calories: 0, weight: 1, wantErr: ErrInvalidCalories},
		{name: "NegativeCalories", description: "air", calories: -5, weight: 1, wantErr: ErrInvalidCalories},
		{name: "NaNCalories", description: "air", calories: math.NaN(), weight: 1, wantErr: ErrInvalidCalories},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item, err := NewItem(tc.description, tc.calories, tc.weight)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.description, item.Description())
			assert.Equal(t, tc.calories, item.Calories())
			assert.Equal(t, tc.weight, item.Weight())
		})
	}
}

func TestMustItemPanicsOnInvalidInput(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustItem("", 10, 1) })
	assert.NotPanics(t, func() { MustItem("pasta", 40, 5) })
}

func TestWeightPerCalorie(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.2, MustItem("corn", 100, 20).WeightPerCalorie(), 1e-12)
	assert.InDelta(t, 0.125, MustItem("pasta", 40, 5).WeightPerCalorie(), 1e-12)
}

func TestItemJSONRoundTripValidates(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(MustItem("pasta", 40, 5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"pasta","calories":40,"weight":5}`, string(data))

	var decoded Item
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, MustItem("pasta", 40, 5), decoded)

	var invalid Item
	err = json.Unmarshal([]byte(`{"description":"air","calories":0,"weight":1}`), &invalid)
	require.ErrorIs(t, err, ErrInvalidCalories)
}

func TestItemMarshalYAML(t *testing.T) {
	t.Parallel()

	out, err := yaml.Marshal(Catalog{MustItem("corn", 100, 20)})
	require.NoError(t, err)
	assert.Contains(t, string(out), "description: corn")
	assert.Contains(t, string(out), "calories: 100")
}
