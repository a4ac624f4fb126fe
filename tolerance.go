// Package blasflow tolerance-based verification for floating-point comparisons
package blasflow

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point comparison
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero
	AbsTol float64

	// RelTol is the relative tolerance as a fraction of the larger value
	RelTol float64

	// CheckNaN determines if NaN values should be considered equal
	CheckNaN bool

	// CheckInf determines if Inf values should be considered equal
	CheckInf bool
}

// DefaultTolerance returns default tolerance configuration
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-6,
		RelTol:   1e-5,
		CheckNaN: true,
		CheckInf: true,
	}
}

// StrictTolerance returns strict tolerance configuration for high precision
func StrictTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-9,
		RelTol:   1e-8,
		CheckNaN: true,
		CheckInf: true,
	}
}

// RelaxedTolerance returns relaxed tolerance for accumulated operations
func RelaxedTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-4,
		RelTol:   1e-3,
		CheckNaN: true,
		CheckInf: true,
	}
}

// NearEqual checks if two float64 values are equal within tolerance
func NearEqual(a, b float64, tol ToleranceConfig) bool {
	if tol.CheckNaN && math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if tol.CheckInf {
		if math.IsInf(a, 1) && math.IsInf(b, 1) {
			return true
		}
		if math.IsInf(a, -1) && math.IsInf(b, -1) {
			return true
		}
	}

	// Exactly equal (handles ±0)
	if a == b {
		return true
	}

	// A lone infinity means unbounded error; the relative check below
	// would compare +Inf <= +Inf and wrongly accept it.
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}

	diff := math.Abs(a - b)
	if diff <= tol.AbsTol {
		return true
	}

	larger := math.Max(math.Abs(a), math.Abs(b))
	return diff <= larger*tol.RelTol
}

// Float32NearEqual checks if two float32 values are equal within tolerance
func Float32NearEqual(a, b float32, tol ToleranceConfig) bool {
	return NearEqual(float64(a), float64(b), tol)
}

// VerificationResult holds the outcome of an array comparison
type VerificationResult struct {
	MaxAbsError float64
	MaxRelError float64
	NumErrors   int
	TotalItems  int
	FirstError  int // Index of first error, -1 if none
}

// VerifyFloat32Array compares two float32 arrays and returns detailed results
func VerifyFloat32Array(expected, actual []float32, tol ToleranceConfig) VerificationResult {
	e := make([]float64, len(expected))
	a := make([]float64, len(actual))
	for i := range expected {
		e[i] = float64(expected[i])
	}
	for i := range actual {
		a[i] = float64(actual[i])
	}
	return VerifyFloat64Array(e, a, tol)
}

// VerifyFloat64Array compares two float64 arrays and returns detailed results
func VerifyFloat64Array(expected, actual []float64, tol ToleranceConfig) VerificationResult {
	result := VerificationResult{
		TotalItems: len(expected),
		FirstError: -1,
	}

	if len(expected) != len(actual) {
		result.NumErrors = len(expected)
		return result
	}

	for i := range expected {
		if !NearEqual(expected[i], actual[i], tol) {
			result.NumErrors++
			if result.FirstError == -1 {
				result.FirstError = i
			}

			absDiff := math.Abs(expected[i] - actual[i])
			if absDiff > result.MaxAbsError {
				result.MaxAbsError = absDiff
			}
			if expected[i] != 0 {
				relDiff := absDiff / math.Abs(expected[i])
				if relDiff > result.MaxRelError {
					result.MaxRelError = relDiff
				}
			}
		}
	}
	return result
}

// IsAcceptable returns true if the verification result is within tolerance
func (r VerificationResult) IsAcceptable(tol ToleranceConfig) bool {
	return r.NumErrors == 0 ||
		(r.MaxAbsError <= tol.AbsTol && r.MaxRelError <= tol.RelTol)
}

// String formats the verification result for display
func (r VerificationResult) String() string {
	if r.NumErrors == 0 {
		return "PASS: All values match within tolerance"
	}

	errorRate := float64(r.NumErrors) / float64(r.TotalItems) * 100
	return fmt.Sprintf("FAIL: %d/%d values differ (%.2f%%)\n"+
		"  Max absolute error: %e\n"+
		"  Max relative error: %e\n"+
		"  First error at index: %d",
		r.NumErrors, r.TotalItems, errorRate,
		r.MaxAbsError, r.MaxRelError,
		r.FirstError)
}
