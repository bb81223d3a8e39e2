package graph

import "fmt"

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("graph: operator panicked: %w", err)
	}
	return fmt.Errorf("graph: operator panicked: %v", r)
}
