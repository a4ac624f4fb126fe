package blasflow

import "fmt"

// DType identifies the element type of a device operand. The engine
// supports exactly two precisions; every other value is rejected at
// facade-call time with an UnsupportedType error.
type DType int

const (
	Float32 DType = iota
	Float64
)

// DTypeNone marks nodes with no intrinsic element type, such as custom
// escape-hatch nodes whose closures manage their own operands.
const DTypeNone DType = -1

// Size returns the element size in bytes.
func (t DType) Size() int {
	switch t {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// String returns the type name.
func (t DType) String() string {
	switch t {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case DTypeNone:
		return "none"
	default:
		return fmt.Sprintf("dtype(%d)", int(t))
	}
}

// Supported reports whether t is one of the two captured precisions.
func (t DType) Supported() bool {
	return t == Float32 || t == Float64
}

// checkDType is the shared facade guard.
func checkDType(op string, t DType) error {
	if !t.Supported() {
		return NewUnsupportedTypeError(op, t)
	}
	return nil
}
