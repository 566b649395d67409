package cell

import "github.com/pkg/errors"

// Code is one of the short failure tags the core raises. Implementers may
// expand a Code into a descriptive message but must preserve its meaning.
type Code string

const (
	// CodeEmptyAccess is raised by typed access on an empty Cell.
	CodeEmptyAccess Code = "E0005"
	// CodeTypeMismatch is raised by typed access with a mismatched dynamic type.
	CodeTypeMismatch Code = "E0006"
	// CodeDowngrade is raised when escalating to a lower protection level
	// than the one already in effect.
	CodeDowngrade Code = "E000G"
	// CodeRawMutationForbidden is raised by a raw swap/assign where either
	// Proxy's protection forbids in-place mutation.
	CodeRawMutationForbidden Code = "E000J"
	// CodeWriteForbidden is raised by writable typed access on a
	// constant-or-higher Cell.
	CodeWriteForbidden Code = "E000K"
	// CodeSingleForbidsClone is raised by clone or detach on a single-level Cell.
	CodeSingleForbidsClone Code = "E000L"
)

// Fault is the error type every core failure is reported as. The short Code
// is preserved across wrapping so a caller can recover it with CodeOf.
type Fault struct {
	code Code
	msg  string
}

func (f *Fault) Error() string {
	return string(f.code) + ": " + f.msg
}

// fault constructs a Fault and wraps it with a stack trace at the call site,
// one frame up from here, so %+v on the returned error shows where the
// violation was detected rather than where Fault.Error was formatted.
func fault(code Code, msg string) error {
	return errors.WithStack(&Fault{code: code, msg: msg})
}

// CodeOf recovers the short failure code from an error produced by this
// package, unwrapping through any github.com/pkg/errors wrapping. Returns
// ("", false) for errors the core did not raise.
func CodeOf(err error) (Code, bool) {
	var f *Fault
	for err != nil {
		if asFault, ok := err.(*Fault); ok {
			f = asFault
			break
		}
		type causer interface{ Cause() error }
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	if f == nil {
		return "", false
	}
	return f.code, true
}

// ErrEmptyAccess reports typed access on an empty Cell.
func ErrEmptyAccess() error {
	return fault(CodeEmptyAccess, "typed access on an empty cell")
}

// ErrTypeMismatch reports typed access with a mismatched dynamic type.
func ErrTypeMismatch(want, got string) error {
	return fault(CodeTypeMismatch, "want "+want+", got "+got)
}

// ErrDowngrade reports an attempt to lower an already-higher protection level.
func ErrDowngrade() error {
	return fault(CodeDowngrade, "cannot downgrade protection level")
}

// ErrRawMutationForbidden reports a raw swap/assign against a protected Proxy.
func ErrRawMutationForbidden() error {
	return fault(CodeRawMutationForbidden, "raw mutation of a protected cell")
}

// ErrWriteForbidden reports writable access to a constant-or-higher Cell.
func ErrWriteForbidden() error {
	return fault(CodeWriteForbidden, "writable access to a constant cell")
}

// ErrSingleForbidsClone reports clone/detach attempted on a single-level Cell.
func ErrSingleForbidsClone() error {
	return fault(CodeSingleForbidsClone, "clone or detach of a single-level cell")
}

// ErrNoExtensions is the distinct runtime failure for a type without an
// extension namespace. It is not one of the protection Codes.
var ErrNoExtensions = errors.New("target type does not support extensions")
