package structload

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	selectorPoint struct {
		X int `json:"x"`
	}

	selectorShape interface{ Kind() string }

	selectorCircle struct {
		selectorPoint
		R float64 `json:"r"`
	}

	selectorScene struct {
		Name    string                    `json:"name"`
		Shapes  []selectorShape           `json:"shapes"`
		Points  [2]selectorPoint          `json:"points"`
		ByName  map[string]*selectorPoint `json:"byName"`
		Current *selectorCircle           `json:"current"`
	}
)

func (c *selectorCircle) Kind() string { return "circle" }

func TestSelector_Value(t *testing.T) {
	scene := &selectorScene{
		Name:    "demo",
		Shapes:  []selectorShape{&selectorCircle{R: 1}, &selectorCircle{selectorPoint: selectorPoint{X: 4}, R: 2}},
		Points:  [2]selectorPoint{{X: 1}, {X: 2}},
		ByName:  map[string]*selectorPoint{"a": {X: 5}},
		Current: nil,
	}
	registry := NewRegistry()
	for _, rType := range []reflect.Type{reflect.TypeOf(selectorScene{}), reflect.TypeOf(selectorCircle{})} {
		_, err := registry.Register(rType)
		require.Nil(t, err)
	}

	var testCases = []struct {
		description string
		expr        string
		expect      interface{}
		expectErr   bool
	}{
		{description: "field", expr: "name", expect: "demo"},
		{description: "interface item", expr: "shapes[1].r", expect: 2.0},
		{description: "base class element", expr: "shapes[1].x", expect: 4},
		{description: "base class by name", expr: "shapes[1].selectorPoint.x", expect: 4},
		{description: "array item", expr: "points[1].x", expect: 2},
		{description: "map entry", expr: "byName.a.x", expect: 5},
		{description: "nil pointer", expr: "current.r", expect: nil},
		{description: "index out of range", expr: "shapes[2].r", expectErr: true},
		{description: "unknown element", expr: "shapes[0].z", expectErr: true},
		{description: "missing key", expr: "byName.b", expectErr: true},
		{description: "index on struct", expr: "[0]", expectErr: true},
	}

	for _, testCase := range testCases {
		selector, err := registry.NewSelector(testCase.expr)
		require.Nil(t, err, testCase.description)
		actual, err := selector.Value(scene)
		if testCase.expectErr {
			assert.NotNil(t, err, testCase.description)
			continue
		}
		assert.Nil(t, err, testCase.description)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestRegistry_NewSelector(t *testing.T) {
	registry := NewRegistry()
	for _, expr := range []string{"", "a[", "a[x]"} {
		_, err := registry.NewSelector(expr)
		assert.NotNil(t, err, expr)
	}
	selector, err := registry.NewSelector("a.b[2].c")
	require.Nil(t, err)
	assert.Equal(t, "a.b[2].c", selector.Path())
	assert.Len(t, selector.segments, 4)
}
