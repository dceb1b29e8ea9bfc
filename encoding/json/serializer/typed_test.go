package serializer_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
)

func TestTime_Load(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		layout        string
		expect        time.Time
		expectOutcome result.Outcome
	}{
		{description: "default layout", input: `"2024-03-01T10:20:30Z"`, expect: time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), expectOutcome: result.Success},
		{description: "custom layout", input: `"2024-03-01"`, layout: "2006-01-02", expect: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), expectOutcome: result.Success},
		{description: "iso date format", input: `"2024-03-01 10:20"`, layout: "YYYY-MM-DD hh:mm", expect: time.Date(2024, 3, 1, 10, 20, 0, 0, time.UTC), expectOutcome: result.Success},
		{description: "date only with default layout", input: `"2024-03-01"`, expect: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), expectOutcome: result.Success},
		{description: "invalid", input: `"yesterday"`, expectOutcome: result.Unsupported},
		{description: "number", input: `1`, expectOutcome: result.Unsupported},
	}

	for _, testCase := range testCases {
		target := time.Time{}
		code := load(t, &target, testCase.input, unmarshal.Settings{TimeLayout: testCase.layout})
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.True(t, testCase.expect.Equal(target), testCase.description)
	}
}

func TestUUID_Load(t *testing.T) {
	expect := uuid.MustParse("2f8f49d7-0aec-4f73-9dc9-0b883b86acdb")
	target := uuid.UUID{}
	code := load(t, &target, `"2F8F49D7-0AEC-4F73-9DC9-0B883B86ACDB"`, unmarshal.Settings{})
	assert.EqualValues(t, result.Success, code.Outcome)
	assert.Equal(t, expect, target)

	code = load(t, &target, `"nope"`, unmarshal.Settings{})
	assert.EqualValues(t, result.Unsupported, code.Outcome)
	assert.Equal(t, expect, target)

	code = load(t, &target, `{}`, unmarshal.Settings{})
	assert.EqualValues(t, result.DefaultsUsed, code.Outcome)
	assert.Equal(t, expect, target, "explicit default does not reset existing value")
}

func TestTypeID_Load(t *testing.T) {
	target := structload.TypeID{}
	code := load(t, &target, `"{2F8F49D7-0AEC-4F73-9DC9-0B883B86ACDB}"`, unmarshal.Settings{})
	assert.EqualValues(t, result.Success, code.Outcome)
	assert.Equal(t, "{2F8F49D7-0AEC-4F73-9DC9-0B883B86ACDB}", target.String())

	code = load(t, &target, `"{2F8F49D7-0AEC-4F73-9DC9-0B883B86ACDB"`, unmarshal.Settings{})
	assert.EqualValues(t, result.Unsupported, code.Outcome)
}

func TestDecimal_Load(t *testing.T) {
	var testCases = []struct {
		description   string
		input         string
		expect        string
		expectOutcome result.Outcome
	}{
		{description: "number", input: `12.345`, expect: "12.345", expectOutcome: result.Success},
		{description: "string", input: `"0.1"`, expect: "0.1", expectOutcome: result.Success},
		{description: "invalid", input: `"x"`, expect: "0", expectOutcome: result.Unsupported},
		{description: "bool", input: `true`, expect: "0", expectOutcome: result.Unsupported},
	}

	for _, testCase := range testCases {
		target := decimal.Zero
		code := load(t, &target, testCase.input, unmarshal.Settings{})
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.Equal(t, testCase.expect, target.String(), testCase.description)
	}
}
