package resolve

import "sort"

// fitCurve fits a moving local least-squares polynomial of the given
// order through the (x, z) points and samples it at dense evenly spaced
// positions spanning the point range. Points must be strictly increasing
// in x.
func fitCurve(xs, zs []float64, order, dense int) ([]float64, []float64) {
	n := len(xs)
	window := 2*order + 3
	if window > n {
		window = n
	}

	curveX := make([]float64, dense)
	curveZ := make([]float64, dense)
	span := xs[n-1] - xs[0]
	for j := 0; j < dense; j++ {
		xq := xs[0] + span*float64(j)/float64(dense-1)
		curveX[j] = xq
		curveZ[j] = localFit(xs, zs, order, window, xq)
	}
	return curveX, curveZ
}

// localFit evaluates the least-squares polynomial of the window of points
// nearest xq, centered on xq for conditioning.
func localFit(xs, zs []float64, order, window int, xq float64) float64 {
	n := len(xs)

	// Window of `window` consecutive points nearest xq.
	i := sort.SearchFloat64s(xs, xq)
	lo := i - window/2
	if lo < 0 {
		lo = 0
	}
	if lo+window > n {
		lo = n - window
	}

	m := order + 1
	if window < m {
		m = window
	}

	// Normal equations for the centered monomial basis.
	a := make([][]float64, m)
	for r := range a {
		a[r] = make([]float64, m+1)
	}
	for k := lo; k < lo+window; k++ {
		dx := xs[k] - xq
		basis := make([]float64, m)
		basis[0] = 1
		for d := 1; d < m; d++ {
			basis[d] = basis[d-1] * dx
		}
		for r := 0; r < m; r++ {
			for c := 0; c < m; c++ {
				a[r][c] += basis[r] * basis[c]
			}
			a[r][m] += basis[r] * zs[k]
		}
	}

	coeff := solve(a, m)
	if coeff == nil {
		// Degenerate window; fall back to the nearest sample.
		nearest := lo
		for k := lo + 1; k < lo+window; k++ {
			if abs(xs[k]-xq) < abs(xs[nearest]-xq) {
				nearest = k
			}
		}
		return zs[nearest]
	}
	// Centered basis: the constant term is the value at xq.
	return coeff[0]
}

// solve runs Gaussian elimination with partial pivoting on the augmented
// m×(m+1) system, returning nil when the system is singular.
func solve(a [][]float64, m int) []float64 {
	for col := 0; col < m; col++ {
		pivot := col
		for r := col + 1; r < m; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if abs(a[pivot][col]) < 1e-14 {
			return nil
		}
		a[col], a[pivot] = a[pivot], a[col]

		for r := col + 1; r < m; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c <= m; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	coeff := make([]float64, m)
	for r := m - 1; r >= 0; r-- {
		sum := a[r][m]
		for c := r + 1; c < m; c++ {
			sum -= a[r][c] * coeff[c]
		}
		coeff[r] = sum / a[r][r]
	}
	return coeff
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
