package waste

import "fmt"

// ClassificationError is returned when the completion call behind Classify
// fails or yields no usable output.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// InstructionError is returned when recycling instructions could not be
// generated. There are no fallback instructions.
type InstructionError struct {
	Err error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction generation failed: %v", e.Err)
}

func (e *InstructionError) Unwrap() error { return e.Err }
