package serializer_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/serializer"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

// load loads input into target through the registered serializer of target type
func load(t *testing.T, target interface{}, input string, settings unmarshal.Settings) result.Code {
	registry := structload.NewRegistry()
	serializers, err := serializer.New(registry)
	require.Nil(t, err)
	rValue := reflect.ValueOf(target)
	class, err := registry.Register(rValue.Type().Elem())
	require.Nil(t, err)
	ctx := unmarshal.NewContext(registry, serializers, nil, settings)
	return unmarshal.Load(rValue.UnsafePointer(), class.TypeID, value.MustParse(input), false, ctx)
}

func TestInt_Load(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		settings    unmarshal.Settings
		expect      int32
		expectCode  result.Code
	}{
		{description: "number", input: `12`, expect: 12, expectCode: result.New(result.ReadField, result.Success)},
		{description: "negative", input: `-12`, expect: -12, expectCode: result.New(result.ReadField, result.Success)},
		{description: "exponent", input: `1e3`, expect: 1000, expectCode: result.New(result.ReadField, result.Success)},
		{description: "fraction truncated", input: `12.7`, expect: 12, expectCode: result.New(result.Convert, result.Success)},
		{description: "string coerced", input: `" 7 "`, expect: 7, expectCode: result.New(result.ReadField, result.Success)},
		{description: "bool coerced", input: `true`, expect: 1, expectCode: result.New(result.ReadField, result.Success)},
		{description: "out of range", input: `2147483648`, expect: 5, expectCode: result.New(result.Convert, result.Unsupported)},
		{description: "invalid string", input: `"abc"`, expect: 5, expectCode: result.New(result.Convert, result.Unsupported)},
		{description: "null ignored", input: `null`, expect: 5, expectCode: result.New(result.ReadField, result.DefaultsUsed)},
		{description: "null rejected", input: `null`, settings: unmarshal.Settings{NullPolicy: unmarshal.StrictNulls}, expect: 5, expectCode: result.New(result.ReadField, result.Unsupported)},
		{description: "explicit default", input: `{}`, expect: 5, expectCode: result.New(result.ReadField, result.DefaultsUsed)},
		{description: "array", input: `[1]`, expect: 5, expectCode: result.New(result.ReadField, result.Unsupported)},
		{description: "exact string", input: `"7"`, settings: unmarshal.Settings{NumberPolicy: unmarshal.ExactNumbers}, expect: 5, expectCode: result.New(result.ReadField, result.Unsupported)},
		{description: "exact bool", input: `true`, settings: unmarshal.Settings{NumberPolicy: unmarshal.ExactNumbers}, expect: 5, expectCode: result.New(result.ReadField, result.Unsupported)},
		{description: "exact fraction", input: `1.5`, settings: unmarshal.Settings{NumberPolicy: unmarshal.ExactNumbers}, expect: 5, expectCode: result.New(result.Convert, result.Unsupported)},
	}

	for _, testCase := range testCases {
		target := int32(5)
		code := load(t, &target, testCase.input, testCase.settings)
		assert.EqualValues(t, testCase.expectCode, code, testCase.description)
		assert.EqualValues(t, testCase.expect, target, testCase.description)
	}
}

func TestUint_Load(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		expect        uint8
		expectOutcome result.Outcome
	}{
		{description: "number", input: `255`, expect: 255, expectOutcome: result.Success},
		{description: "overflow", input: `256`, expect: 1, expectOutcome: result.Unsupported},
		{description: "negative", input: `-1`, expect: 1, expectOutcome: result.Unsupported},
		{description: "string", input: `"3"`, expect: 3, expectOutcome: result.Success},
	}

	for _, testCase := range testCases {
		target := uint8(1)
		code := load(t, &target, testCase.input, unmarshal.Settings{})
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.EqualValues(t, testCase.expect, target, testCase.description)
	}
}

func TestFloat_Load(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		settings      unmarshal.Settings
		expect        float64
		expectOutcome result.Outcome
	}{
		{description: "number", input: `1.25`, expect: 1.25, expectOutcome: result.Success},
		{description: "string", input: `"2.5"`, expect: 2.5, expectOutcome: result.Success},
		{description: "exact string", input: `"2.5"`, settings: unmarshal.Settings{NumberPolicy: unmarshal.ExactNumbers}, expect: 9, expectOutcome: result.Unsupported},
		{description: "bool", input: `false`, expect: 9, expectOutcome: result.Unsupported},
	}

	for _, testCase := range testCases {
		target := float64(9)
		code := load(t, &target, testCase.input, testCase.settings)
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.EqualValues(t, testCase.expect, target, testCase.description)
	}
}

func TestBool_Load(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		settings      unmarshal.Settings
		expect        bool
		expectOutcome result.Outcome
	}{
		{description: "bool", input: `true`, expect: true, expectOutcome: result.Success},
		{description: "string", input: `"true"`, expect: true, expectOutcome: result.Success},
		{description: "number", input: `1`, expect: true, expectOutcome: result.Success},
		{description: "exact number", input: `1`, settings: unmarshal.Settings{NumberPolicy: unmarshal.ExactNumbers}, expectOutcome: result.Unsupported},
		{description: "invalid string", input: `"yes please"`, expectOutcome: result.Unsupported},
	}

	for _, testCase := range testCases {
		target := false
		code := load(t, &target, testCase.input, testCase.settings)
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.EqualValues(t, testCase.expect, target, testCase.description)
	}
}

func TestString_Load(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		settings      unmarshal.Settings
		expect        string
		expectOutcome result.Outcome
	}{
		{description: "string", input: `"abc"`, expect: "abc", expectOutcome: result.Success},
		{description: "escaped", input: `"a\"bA"`, expect: `a"bA`, expectOutcome: result.Success},
		{description: "number", input: `1.50`, expect: "1.50", expectOutcome: result.Success},
		{description: "bool", input: `false`, expect: "false", expectOutcome: result.Success},
		{description: "exact number", input: `1`, settings: unmarshal.Settings{NumberPolicy: unmarshal.ExactNumbers}, expect: "x", expectOutcome: result.Unsupported},
		{description: "object", input: `{"a": 1}`, expect: "x", expectOutcome: result.Unsupported},
	}

	for _, testCase := range testCases {
		target := "x"
		code := load(t, &target, testCase.input, testCase.settings)
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.EqualValues(t, testCase.expect, target, testCase.description)
	}
}
