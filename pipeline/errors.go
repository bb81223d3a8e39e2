package pipeline

import "fmt"

var errUnexpectedStageValue = fmt.Errorf("pipeline: stage returned a value of unexpected type")

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("pipeline: stage panicked: %w", err)
	}
	return fmt.Errorf("pipeline: stage panicked: %v", r)
}
