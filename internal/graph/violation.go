package graph

import "fmt"

// ContractViolation reports a broken precondition or invariant inside an
// edge evaluation. It is raised with panic and is never recoverable by the
// edge itself.
type ContractViolation struct {
	Edge    string // edge name, e.g. "EdgeDynamicObstacle"
	Message string
}

func (c *ContractViolation) Error() string {
	return fmt.Sprintf("%s: contract violation: %s", c.Edge, c.Message)
}

// Assertf panics with a *ContractViolation when cond is false.
func Assertf(cond bool, edge, format string, args ...interface{}) {
	if cond {
		return
	}
	panic(&ContractViolation{Edge: edge, Message: fmt.Sprintf(format, args...)})
}

// recoverViolation converts a ContractViolation panic into *err. Any other
// panic is re-raised.
func recoverViolation(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if cv, ok := r.(*ContractViolation); ok {
		*err = cv
		return
	}
	panic(r)
}
