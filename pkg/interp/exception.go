package interp

import "covlang/pkg/cell"

// ScriptException carries a thrown Cell value up through Go's own error
// return path so a `throw` can unwind past arbitrarily many Go call
// frames until a `try`/`catch` (or the top-level Run caller) handles it.
type ScriptException struct {
	Value *cell.Any
}

func (e *ScriptException) Error() string {
	return "uncaught exception: " + e.Value.ToString()
}

// control-flow signals threaded through execStmt/execBlock as errors;
// none of them are meant to reach a caller outside this package.
type breakSignal struct{}
type continueSignal struct{}
type returnSignal struct{ value *cell.Any }

func (breakSignal) Error() string    { return "break outside of loop handling" }
func (continueSignal) Error() string { return "continue outside of loop handling" }
func (r returnSignal) Error() string { return "return outside of call handling" }
