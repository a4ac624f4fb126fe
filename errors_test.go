package blasflow

import (
	"errors"
	"strings"
	"testing"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		checkFn  func(error) bool
	}{
		{
			name:     "Construction Error",
			err:      NewConstructionError("Axpy", "zero vector stride"),
			wantType: ErrTypeConstruction,
			wantOp:   "Axpy",
			checkFn:  IsConstructionError,
		},
		{
			name:     "Graph Cycle Error",
			err:      NewGraphCycleError("Capture", "dependency graph contains a cycle"),
			wantType: ErrTypeGraphCycle,
			wantOp:   "Capture",
			checkFn:  IsGraphCycleError,
		},
		{
			name:     "Unsupported Type Error",
			err:      NewUnsupportedTypeError("Gemm", DType(99)),
			wantType: ErrTypeUnsupportedType,
			wantOp:   "Gemm",
			checkFn:  IsUnsupportedTypeError,
		},
		{
			name:     "Capture Error",
			err:      NewCaptureError("Custom", 3, errors.New("boom")),
			wantType: ErrTypeCapture,
			wantOp:   "Custom",
			checkFn:  IsCaptureError,
		},
		{
			name:     "Launch Error",
			err:      NewLaunchError("Launch", 1, errors.New("boom")),
			wantType: ErrTypeLaunch,
			wantOp:   "Launch",
			checkFn:  IsLaunchError,
		},
		{
			name:     "Memory Error",
			err:      ErrOutOfMemory,
			wantType: ErrTypeMemory,
			wantOp:   "Malloc",
			checkFn:  IsMemoryError,
		},
		{
			name:     "Invalid Arg Error",
			err:      ErrInvalidSize,
			wantType: ErrTypeInvalidArg,
			wantOp:   "Malloc",
			checkFn:  IsInvalidArgError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flowErr, ok := tt.err.(*FlowError)
			if !ok {
				t.Fatalf("Expected FlowError, got %T", tt.err)
			}

			if flowErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", flowErr.Type, tt.wantType)
			}
			if flowErr.Op != tt.wantOp {
				t.Errorf("Op = %v, want %v", flowErr.Op, tt.wantOp)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("Type check function returned false")
			}
			if tt.err.Error() == "" {
				t.Error("Error string is empty")
			}
		})
	}
}

func TestErrorStringIncludesNode(t *testing.T) {
	err := NewCaptureError("Gemm", 7, errors.New("bad operand"))
	if !strings.Contains(err.Error(), "node 7") {
		t.Errorf("error string %q should name the offending node", err.Error())
	}
	if !strings.Contains(err.Error(), "bad operand") {
		t.Errorf("error string %q should include the cause", err.Error())
	}

	// Non-node errors must not report a node.
	if strings.Contains(ErrInvalidSize.Error(), "node") {
		t.Errorf("non-node error %q mentions a node", ErrInvalidSize.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	baseErr := errors.New("base error")
	wrappedErr := NewLaunchError("Launch", 0, baseErr)

	flowErr, ok := wrappedErr.(*FlowError)
	if !ok {
		t.Fatal("Expected FlowError")
	}
	if flowErr.Unwrap() != baseErr {
		t.Errorf("Unwrap() = %v, want %v", flowErr.Unwrap(), baseErr)
	}
	if !errors.Is(wrappedErr, baseErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}

	var target *FlowError
	if !errors.As(wrappedErr, &target) || target.NodeID != 0 {
		t.Error("errors.As() should recover the FlowError with its node")
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrTypeConstruction, "Construction"},
		{ErrTypeGraphCycle, "GraphCycle"},
		{ErrTypeUnsupportedType, "UnsupportedType"},
		{ErrTypeCapture, "Capture"},
		{ErrTypeLaunch, "Launch"},
		{ErrTypeMemory, "Memory"},
		{ErrTypeInvalidArg, "InvalidArgument"},
		{ErrorType(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.errType.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}
