package result

import "fmt"

// Task describes where an outcome occurred
type Task uint8

const (
	TaskNone Task = iota
	RetrieveInfo
	CreateDefault
	Convert
	Clear
	ReadField
	WriteValue
)

// Outcome classifies a result, values are ordered by ascending severity
type Outcome uint8

const (
	Success Outcome = iota
	Skipped
	PartialSkip
	DefaultsUsed
	PartialDefaults
	Available
	Unavailable
	TypeMismatch
	Unsupported
	Missing
	Invalid
	Unknown
	Catastrophic
)

// Processing drives control flow of the loader
type Processing uint8

const (
	Completed Processing = iota
	Altered
	Halted
)

// Code represents a combined result of a load operation
type Code struct {
	Task       Task
	Outcome    Outcome
	Processing Processing
}

var taskNames = []string{"None", "RetrieveInfo", "CreateDefault", "Convert", "Clear", "ReadField", "WriteValue"}

var outcomeNames = []string{"Success", "Skipped", "PartialSkip", "DefaultsUsed", "PartialDefaults", "Available",
	"Unavailable", "TypeMismatch", "Unsupported", "Missing", "Invalid", "Unknown", "Catastrophic"}

var processingNames = []string{"Completed", "Altered", "Halted"}

// New creates a code with processing derived from outcome
func New(task Task, outcome Outcome) Code {
	return Code{Task: task, Outcome: outcome, Processing: outcome.Processing()}
}

// NewWith creates a code with explicit processing
func NewWith(task Task, outcome Outcome, processing Processing) Code {
	return Code{Task: task, Outcome: outcome, Processing: processing}
}

// Processing returns default processing for an outcome
func (o Outcome) Processing() Processing {
	switch {
	case o <= PartialDefaults:
		return Completed
	case o == Catastrophic:
		return Halted
	case o >= TypeMismatch:
		return Altered
	}
	return Completed
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", o)
}

func (t Task) String() string {
	if int(t) < len(taskNames) {
		return taskNames[t]
	}
	return fmt.Sprintf("Task(%d)", t)
}

func (p Processing) String() string {
	if int(p) < len(processingNames) {
		return processingNames[p]
	}
	return fmt.Sprintf("Processing(%d)", p)
}

// Combine merges sibling result, worst processing and most severe outcome win
func (c Code) Combine(other Code) Code {
	ret := c
	if other.Outcome > ret.Outcome {
		ret.Outcome = other.Outcome
		ret.Task = other.Task
	}
	if other.Processing > ret.Processing {
		ret.Processing = other.Processing
	}
	return ret
}

// Combine merges all codes, it returns Success for no codes
func Combine(codes ...Code) Code {
	ret := Code{}
	for _, code := range codes {
		ret = ret.Combine(code)
	}
	return ret
}

// HasDoneWork returns true if anything was loaded or defaulted
func (c Code) HasDoneWork() bool {
	return c.Outcome > PartialSkip
}

// IsHalted returns true if processing was aborted
func (c Code) IsHalted() bool {
	return c.Processing == Halted
}

// IsCompleted returns true if processing completed without alteration
func (c Code) IsCompleted() bool {
	return c.Processing == Completed
}

func (c Code) String() string {
	return c.Task.String() + "/" + c.Outcome.String() + "/" + c.Processing.String()
}
