package solve

import "math"

// pivotThreshold is the fixed minimum magnitude a pivot must clear during
// Gaussian elimination; falling below it reports a structurally singular
// system even though Stage B's rank analysis thought it had picked a
// complete matching (spec.md S4.5 Stage C step 2).
const pivotThreshold = 1e-12

// solveLinear solves A x = b for a square n x n system by Gaussian
// elimination with partial pivoting, mutating neither A nor b (both are
// copied internally). ok is false if any pivot falls below pivotThreshold.
func solveLinear(a [][]float64, b []float64) (x []float64, ok bool) {
	n := len(b)
	m := make([][]float64, n)
	rhs := make([]float64, n)
	copy(rhs, b)
	for i := range m {
		m[i] = append([]float64(nil), a[i]...)
	}

	for col := 0; col < n; col++ {
		pivotRow := col
		best := math.Abs(m[col][col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(m[r][col]); v > best {
				best = v
				pivotRow = r
			}
		}
		if best < pivotThreshold {
			return nil, false
		}
		if pivotRow != col {
			m[col], m[pivotRow] = m[pivotRow], m[col]
			rhs[col], rhs[pivotRow] = rhs[pivotRow], rhs[col]
		}

		pivot := m[col][col]
		for r := col + 1; r < n; r++ {
			factor := m[r][col] / pivot
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				m[r][c] -= factor * m[col][c]
			}
			rhs[r] -= factor * rhs[col]
		}
	}

	x = make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := rhs[i]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * x[j]
		}
		x[i] = sum / m[i][i]
	}
	return x, true
}

// transposeMul returns A * Aᵀ (an m x m matrix) for an m x n matrix a.
func transposeMul(a [][]float64) [][]float64 {
	m := len(a)
	out := make([][]float64, m)
	for i := range out {
		out[i] = make([]float64, m)
		for j := 0; j < m; j++ {
			var sum float64
			for k := range a[i] {
				sum += a[i][k] * a[j][k]
			}
			out[i][j] = sum
		}
	}
	return out
}

// transposeVec returns Aᵀ z for an m x n matrix a and length-m vector z.
func transposeVec(a [][]float64, z []float64) []float64 {
	if len(a) == 0 {
		return nil
	}
	n := len(a[0])
	out := make([]float64, n)
	for k := 0; k < n; k++ {
		var sum float64
		for i := range a {
			sum += a[i][k] * z[i]
		}
		out[k] = sum
	}
	return out
}
