package compile

import "fmt"

// SizeError reports that compiling a pattern would exceed the configured
// instruction-memory budget.
type SizeError struct {
	SizeLimit int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("compiled program exceeds size limit of %d bytes", e.SizeLimit)
}
