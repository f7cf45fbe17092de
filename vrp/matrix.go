// SPDX-License-Identifier: MIT

// Package vrp - dense integer matrix used for per-profile distances and
// durations.
//
// Matrix is a row-major square matrix of int64 values kept deliberately
// small: construction with validation, and unchecked O(1) reads on the
// hot path. Entries equal to MaxValue encode forbidden edges.
package vrp

// Matrix is a square, row-major matrix of non-negative int64 values.
// The zero Matrix is empty and unusable; construct via NewMatrix.
type Matrix struct {
	n    int
	data []int64 // flat backing storage, length n*n
}

// NewMatrix builds an order-n Matrix from the given rows.
//
// Contracts:
//   - len(rows) == n and every len(rows[i]) == n (ErrMatrixShape otherwise),
//   - every entry is >= 0 (ErrNegativeValue otherwise); entries above
//     MaxValue are clamped to MaxValue so they keep sentinel semantics.
//
// Complexity: O(n²) time and memory.
func NewMatrix(rows [][]int64) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, ErrMatrixShape
	}

	data := make([]int64, 0, n*n)
	for i := 0; i < n; i++ {
		if len(rows[i]) != n {
			return nil, ErrMatrixShape
		}
		for j := 0; j < n; j++ {
			v := rows[i][j]
			if v < 0 {
				return nil, ErrNegativeValue
			}
			if v > MaxValue {
				v = MaxValue
			}
			data = append(data, v)
		}
	}

	return &Matrix{n: n, data: data}, nil
}

// ZeroMatrix returns an order-n Matrix with all entries zero.
// Complexity: O(n²).
func ZeroMatrix(n int) *Matrix {
	return &Matrix{n: n, data: make([]int64, n*n)}
}

// Order returns the number of rows (== columns).
func (m *Matrix) Order() int { return m.n }

// At returns the entry at (i, j). Indices must be in range; out-of-range
// access is a programmer error and panics via the bounds check.
// Complexity: O(1).
func (m *Matrix) At(i, j int) int64 { return m.data[i*m.n+j] }
