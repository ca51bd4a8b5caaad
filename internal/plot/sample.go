package plot

import "math"

// Vectorized evaluates a function of one variable at many points. Points
// outside the domain come back as NaN or ±Inf.
type Vectorized interface {
	Apply(xs []float64) []float64
}

// Vectorized2 evaluates a function of two variables pointwise.
type Vectorized2 interface {
	Apply2(xs, ys []float64) []float64
}

// Linspace returns n evenly spaced points from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		// lo + (hi-lo)*i/(n-1) lands exactly on 0 for symmetric odd n.
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	out[n-1] = hi
	return out
}

// Curve samples f over [lo, hi].
func Curve(f Vectorized, lo, hi float64, n int) (xs, ys []float64) {
	xs = Linspace(lo, hi, n)
	return xs, f.Apply(xs)
}

// Mesh samples f over the grid [xlo, xhi] × [ylo, yhi] with n points per
// axis. Rows follow y, columns follow x.
func Mesh(f Vectorized2, xlo, xhi, ylo, yhi float64, n int) (X, Y, Z [][]float64) {
	gx := Linspace(xlo, xhi, n)
	gy := Linspace(ylo, yhi, n)
	flatX := make([]float64, 0, n*n)
	flatY := make([]float64, 0, n*n)
	for _, y := range gy {
		for _, x := range gx {
			flatX = append(flatX, x)
			flatY = append(flatY, y)
		}
	}
	flatZ := f.Apply2(flatX, flatY)
	X, Y, Z = make([][]float64, n), make([][]float64, n), make([][]float64, n)
	for i := 0; i < n; i++ {
		X[i] = flatX[i*n : (i+1)*n]
		Y[i] = flatY[i*n : (i+1)*n]
		Z[i] = flatZ[i*n : (i+1)*n]
	}
	return X, Y, Z
}

// Revolution sweeps the profile y = f(x), x in [lo, hi], a full turn around
// the x axis: (x, f(x)·cos t, f(x)·sin t).
func Revolution(f Vectorized, lo, hi float64, nProfile, nAngle int) (X, Y, Z [][]float64) {
	xs, rs := Curve(f, lo, hi, nProfile)
	ts := Linspace(0, 2*math.Pi, nAngle)
	X, Y, Z = make([][]float64, nAngle), make([][]float64, nAngle), make([][]float64, nAngle)
	for i, t := range ts {
		c, s := math.Cos(t), math.Sin(t)
		X[i] = make([]float64, nProfile)
		Y[i] = make([]float64, nProfile)
		Z[i] = make([]float64, nProfile)
		for j, r := range rs {
			X[i][j] = xs[j]
			Y[i][j] = r * c
			Z[i][j] = r * s
		}
	}
	return X, Y, Z
}
