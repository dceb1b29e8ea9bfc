package serializer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestSlice_Load(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		expect        []int
		expectOutcome result.Outcome
		expectProcess result.Processing
	}{
		{description: "replaces items", input: `[4, 5]`, expect: []int{4, 5}, expectOutcome: result.Success},
		{description: "empty", input: `[]`, expect: []int{}, expectOutcome: result.Success},
		{description: "explicit default clears", input: `{}`, expect: nil, expectOutcome: result.DefaultsUsed},
		{description: "invalid item dropped", input: `[4, "x", 6]`, expect: []int{4, 6}, expectOutcome: result.Unsupported, expectProcess: result.Altered},
		{description: "object rejected", input: `{"a": 1}`, expect: []int{1, 2, 3}, expectOutcome: result.Unsupported, expectProcess: result.Altered},
		{description: "null ignored", input: `null`, expect: []int{1, 2, 3}, expectOutcome: result.DefaultsUsed},
	}

	for _, testCase := range testCases {
		target := []int{1, 2, 3}
		code := load(t, &target, testCase.input, unmarshal.Settings{})
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.EqualValues(t, testCase.expectProcess, code.Processing, testCase.description)
		assert.EqualValues(t, testCase.expect, target, testCase.description)
	}
}

func TestSlice_LoadStructs(t *testing.T) {
	target := []point{{X: 9, Y: 9}}
	code := load(t, &target, `[{"x": 1, "y": 2}, {"x": 3}]`, unmarshal.Settings{})
	assert.EqualValues(t, result.PartialDefaults, code.Outcome)
	assert.EqualValues(t, []point{{X: 1, Y: 2}, {X: 3}}, target)
}

func TestArray_Load(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		expect        [3]int
		expectOutcome result.Outcome
	}{
		{description: "full", input: `[1, 2, 3]`, expect: [3]int{1, 2, 3}, expectOutcome: result.Success},
		{description: "short", input: `[1]`, expect: [3]int{1}, expectOutcome: result.PartialDefaults},
		{description: "long", input: `[1, 2, 3, 4]`, expect: [3]int{1, 2, 3}, expectOutcome: result.PartialSkip},
		{description: "explicit default", input: `{}`, expect: [3]int{}, expectOutcome: result.DefaultsUsed},
	}

	for _, testCase := range testCases {
		target := [3]int{7, 7, 7}
		code := load(t, &target, testCase.input, unmarshal.Settings{})
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.EqualValues(t, testCase.expect, target, testCase.description)
	}
}

func TestMap_Load(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		expect        map[string]*point
		expectOutcome result.Outcome
	}{
		{description: "replaces entries", input: `{"b": {"x": 1, "y": 2}}`, expect: map[string]*point{"b": {X: 1, Y: 2}}, expectOutcome: result.Success},
		{description: "null entry", input: `{"b": null}`, expect: map[string]*point{"b": nil}, expectOutcome: result.Success},
		{description: "explicit default", input: `{}`, expect: nil, expectOutcome: result.DefaultsUsed},
		{description: "array rejected", input: `[]`, expect: map[string]*point{"a": {X: 5}}, expectOutcome: result.Unsupported},
	}

	for _, testCase := range testCases {
		target := map[string]*point{"a": {X: 5}}
		code := load(t, &target, testCase.input, unmarshal.Settings{})
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.EqualValues(t, testCase.expect, target, testCase.description)
	}
}
