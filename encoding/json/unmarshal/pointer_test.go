package unmarshal_test

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/structload"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
	"github.com/viant/structload/value"
)

func TestLoadToPointer(t *testing.T) {
	var testCases = []struct {
		description     string
		input           string
		settings        unmarshal.Settings
		init             func() *Holder
		prepare          func(t *testing.T, f *fixture)
		expectOutcome    result.Outcome
		expectProcess    result.Processing
		verify           func(t *testing.T, before, after *Holder)
		widgetDestroyed  int
		circleDestroyed  int
		factoryCreated   int
		factoryDestroyed int
	}{
		{
			description:   "new instance created and loaded",
			input:         `{"item": {"count": 1, "label": "x", "tags": []}}`,
			init:          func() *Holder { return &Holder{} },
			expectOutcome: result.PartialDefaults,
			expectProcess: result.Completed,
			verify: func(t *testing.T, before, after *Holder) {
				require.NotNil(t, after.Item)
				assert.EqualValues(t, &Widget{Count: 1, Label: "x", Tags: []string{}}, after.Item)
			},
		},
		{
			description:     "halted load discards created instance",
			input:           `{"item": {"count": 1, "bogus": true}}`,
			settings:        unmarshal.Settings{UnknownFieldPolicy: unmarshal.ErrorOnUnknown},
			init:            func() *Holder { return &Holder{} },
			expectOutcome:   result.Unsupported,
			expectProcess:   result.Halted,
			widgetDestroyed: 1,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Nil(t, after.Item)
			},
		},
		{
			description:     "altered load discards created instance",
			input:           `{"item": {"count": "abc"}}`,
			init:            func() *Holder { return &Holder{} },
			expectOutcome:   result.Unsupported,
			expectProcess:   result.Altered,
			widgetDestroyed: 1,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Nil(t, after.Item)
			},
		},
		{
			description:   "pre-existing instance updated in place",
			input:         `{"item": {"label": "b"}}`,
			init:          func() *Holder { return &Holder{Item: &Widget{Count: 2, Label: "a"}} },
			expectOutcome: result.PartialDefaults,
			expectProcess: result.Completed,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Same(t, before.Item, after.Item)
				assert.EqualValues(t, &Widget{Count: 2, Label: "b"}, after.Item)
			},
		},
		{
			description:   "pre-existing instance kept on altered load",
			input:         `{"item": {"label": "b", "count": "abc"}}`,
			init:          func() *Holder { return &Holder{Item: &Widget{Count: 2, Label: "a"}} },
			expectOutcome: result.Unsupported,
			expectProcess: result.Altered,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Same(t, before.Item, after.Item)
				assert.EqualValues(t, "b", after.Item.Label)
			},
		},
		{
			description:     "explicit type replaces held instance",
			input:           `{"shape": {"$type": "Square", "x": 9}}`,
			init:            func() *Holder { return &Holder{Shape: &Circle{R: 1}} },
			expectOutcome:   result.PartialDefaults,
			expectProcess:   result.Completed,
			circleDestroyed: 1,
			verify: func(t *testing.T, before, after *Holder) {
				assert.EqualValues(t, &Square{X: 9}, after.Shape)
			},
		},
		{
			description:   "implicit type reuses held instance",
			input:         `{"shape": {"r": 2}}`,
			init:          func() *Holder { return &Holder{Shape: &Circle{R: 1}} },
			expectOutcome: result.PartialDefaults,
			expectProcess: result.Completed,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Same(t, before.Shape, after.Shape)
				assert.EqualValues(t, &Circle{R: 2}, after.Shape)
			},
		},
		{
			description:   "abstract type can not be created",
			input:         `{"shape": {"r": 2}}`,
			init:          func() *Holder { return &Holder{} },
			expectOutcome: result.Catastrophic,
			expectProcess: result.Halted,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Nil(t, after.Shape)
			},
		},
		{
			description:     "null destroys held instances",
			input:           `{"shape": null, "item": null}`,
			init:            func() *Holder { return &Holder{Shape: &Circle{R: 1}, Item: &Widget{}} },
			expectOutcome:   result.PartialDefaults,
			expectProcess:   result.Completed,
			circleDestroyed: 1,
			widgetDestroyed: 1,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Nil(t, after.Shape)
				assert.Nil(t, after.Item)
			},
		},
		{
			description:   "unrelated type hint rejected",
			input:         `{"shape": {"$type": "Widget", "count": 1}}`,
			init:          func() *Holder { return &Holder{Shape: &Circle{R: 1}} },
			expectOutcome: result.TypeMismatch,
			expectProcess: result.Altered,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Same(t, before.Shape, after.Shape)
				assert.EqualValues(t, &Circle{R: 1}, after.Shape)
			},
		},
		{
			description:   "unknown type name rejected",
			input:         `{"shape": {"$type": "Hexagon"}}`,
			init:          func() *Holder { return &Holder{} },
			expectOutcome: result.Unknown,
			expectProcess: result.Altered,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Nil(t, after.Shape)
			},
		},
		{
			description:   "value held by interface kept on unknown type",
			input:         `{"shape": {"$type": "Hexagon"}}`,
			init:          func() *Holder { return &Holder{Shape: Dot{N: 1}} },
			expectOutcome: result.Unknown,
			expectProcess: result.Altered,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Equal(t, Dot{N: 1}, after.Shape)
			},
		},
		{
			description:   "value held by interface kept on type mismatch",
			input:         `{"shape": {"$type": "Widget", "count": 1}}`,
			init:          func() *Holder { return &Holder{Shape: Dot{N: 1}} },
			expectOutcome: result.TypeMismatch,
			expectProcess: result.Altered,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Equal(t, Dot{N: 1}, after.Shape)
			},
		},
		{
			description:     "value held by interface restored when new instance is discarded",
			input:           `{"shape": {"$type": "Circle", "r": "abc"}}`,
			init:            func() *Holder { return &Holder{Shape: Dot{N: 1}} },
			expectOutcome:   result.Unsupported,
			expectProcess:   result.Altered,
			circleDestroyed: 1,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Equal(t, Dot{N: 1}, after.Shape)
			},
		},
		{
			description:   "value held by interface replaced",
			input:         `{"shape": {"$type": "Circle", "r": 2}}`,
			init:          func() *Holder { return &Holder{Shape: Dot{N: 1}} },
			expectOutcome: result.PartialDefaults,
			expectProcess: result.Completed,
			verify: func(t *testing.T, before, after *Holder) {
				assert.EqualValues(t, &Circle{R: 2}, after.Shape)
			},
		},
		{
			description:   "null clears value held by interface",
			input:         `{"shape": null}`,
			init:          func() *Holder { return &Holder{Shape: Dot{N: 1}} },
			expectOutcome: result.PartialDefaults,
			expectProcess: result.Completed,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Nil(t, after.Shape)
			},
		},
		{
			description: "held instance without factory kept on null",
			input:       `{"item": null}`,
			init:        func() *Holder { return &Holder{Item: &Widget{Count: 1}} },
			prepare: func(t *testing.T, f *fixture) {
				f.class(t, reflect.TypeOf(Widget{})).Factory = nil
			},
			expectOutcome: result.Catastrophic,
			expectProcess: result.Halted,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Same(t, before.Item, after.Item)
			},
		},
		{
			description: "held instance without factory kept on explicit replace",
			input:       `{"shape": {"$type": "Square", "x": 1}}`,
			init:        func() *Holder { return &Holder{Shape: &Circle{R: 1}} },
			prepare: func(t *testing.T, f *fixture) {
				f.class(t, reflect.TypeOf(Circle{})).Factory = nil
			},
			expectOutcome: result.Catastrophic,
			expectProcess: result.Halted,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Same(t, before.Shape, after.Shape)
				assert.EqualValues(t, &Circle{R: 1}, after.Shape)
			},
		},
		{
			description: "factory returning nil",
			input:       `{"item": {"count": 1}}`,
			init:        func() *Holder { return &Holder{} },
			prepare: func(t *testing.T, f *fixture) {
				f.class(t, reflect.TypeOf(Widget{})).Factory = structload.NewFactory(func() unsafe.Pointer { return nil }, nil)
			},
			expectOutcome: result.Catastrophic,
			expectProcess: result.Halted,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Nil(t, after.Item)
			},
		},
		{
			description: "custom factory destroys rolled back instance once",
			input:       `{"item": {"count": 1, "bogus": true}}`,
			settings:    unmarshal.Settings{UnknownFieldPolicy: unmarshal.ErrorOnUnknown},
			init:        func() *Holder { return &Holder{} },
			prepare: func(t *testing.T, f *fixture) {
				f.class(t, reflect.TypeOf(Widget{})).Factory = countingWidgetFactory()
			},
			expectOutcome:    result.Unsupported,
			expectProcess:    result.Halted,
			factoryCreated:   1,
			factoryDestroyed: 1,
			verify: func(t *testing.T, before, after *Holder) {
				assert.Nil(t, after.Item)
			},
		},
		{
			description: "custom factory keeps loaded instance",
			input:       `{"item": {"count": 1}}`,
			init:        func() *Holder { return &Holder{} },
			prepare: func(t *testing.T, f *fixture) {
				f.class(t, reflect.TypeOf(Widget{})).Factory = countingWidgetFactory()
			},
			expectOutcome:  result.PartialDefaults,
			expectProcess:  result.Completed,
			factoryCreated: 1,
			verify: func(t *testing.T, before, after *Holder) {
				require.NotNil(t, after.Item)
				assert.Equal(t, 1, after.Item.Count)
			},
		},
	}

	for _, testCase := range testCases {
		resetDestroyed()
		f := newFixture(t)
		if testCase.prepare != nil {
			testCase.prepare(t, f)
		}
		target := testCase.init()
		before := *target
		code := unmarshal.Load(unsafe.Pointer(target), f.typeID(t, reflect.TypeOf(Holder{})), value.MustParse(testCase.input), false, f.context(testCase.settings))
		assert.EqualValues(t, testCase.expectOutcome, code.Outcome, testCase.description)
		assert.EqualValues(t, testCase.expectProcess, code.Processing, testCase.description)
		assert.Equal(t, testCase.widgetDestroyed, widgetDestroyed, testCase.description)
		assert.Equal(t, testCase.circleDestroyed, circleDestroyed, testCase.description)
		assert.Equal(t, testCase.factoryCreated, factoryCreated, testCase.description)
		assert.Equal(t, testCase.factoryDestroyed, factoryDestroyed, testCase.description)
		testCase.verify(t, &before, target)
	}
}

func TestLoadToPointer_TypeIDHint(t *testing.T) {
	f := newFixture(t)
	circleID := f.typeID(t, reflect.TypeOf(Circle{}))
	for _, hint := range []string{circleID.String(), circleID.String() + " Circle", circleID.String()[1:37]} {
		target := Holder{}
		input := value.Object(value.Field("shape", value.Object(value.Field(value.TypeField, value.String(hint)), value.Field("r", value.Int(3)))))
		code := unmarshal.Load(unsafe.Pointer(&target), f.typeID(t, reflect.TypeOf(target)), input, false, f.context(unmarshal.Settings{}))
		assert.EqualValues(t, result.Completed, code.Processing, hint)
		assert.EqualValues(t, &Circle{R: 3}, target.Shape, hint)
	}
}

func TestLoadToPointer_Idempotent(t *testing.T) {
	resetDestroyed()
	f := newFixture(t)
	target := Holder{}
	id := f.typeID(t, reflect.TypeOf(target))
	input := value.MustParse(`{"shape": {"$type": "Circle", "r": 4}}`)
	first := unmarshal.Load(unsafe.Pointer(&target), id, input, false, f.context(unmarshal.Settings{}))
	shape := target.Shape
	second := unmarshal.Load(unsafe.Pointer(&target), id, input, false, f.context(unmarshal.Settings{}))
	assert.EqualValues(t, first, second)
	assert.Same(t, shape, target.Shape)
	assert.Equal(t, 0, circleDestroyed)
}

func TestLoadToPointer_DeclaredTypeOnly(t *testing.T) {
	f := newFixture(t)
	id := f.typeID(t, reflect.TypeOf(BaseHolder{}))
	derived := value.MustParse(`{"base": {"$type": "Derived", "a": 1, "b": 2}}`)

	empty := BaseHolder{}
	code := unmarshal.Load(unsafe.Pointer(&empty), id, derived, false, f.context(unmarshal.Settings{}))
	assert.EqualValues(t, result.Code{Task: result.Convert, Outcome: result.TypeMismatch, Processing: result.Altered}, code)
	assert.Nil(t, empty.Base)

	held := &Base{A: 5}
	target := BaseHolder{Base: held}
	code = unmarshal.Load(unsafe.Pointer(&target), id, derived, false, f.context(unmarshal.Settings{}))
	assert.EqualValues(t, result.TypeMismatch, code.Outcome)
	assert.Same(t, held, target.Base)
	assert.Equal(t, 5, target.Base.A)

	declared := value.MustParse(`{"base": {"$type": "Base", "a": 1}}`)
	reloaded := BaseHolder{}
	first := unmarshal.Load(unsafe.Pointer(&reloaded), id, declared, false, f.context(unmarshal.Settings{}))
	instance := reloaded.Base
	second := unmarshal.Load(unsafe.Pointer(&reloaded), id, declared, false, f.context(unmarshal.Settings{}))
	assert.EqualValues(t, result.Completed, first.Processing)
	assert.EqualValues(t, first, second)
	assert.Same(t, instance, reloaded.Base, "matching type hint reuses held instance")
	assert.Equal(t, 1, reloaded.Base.A)
}
