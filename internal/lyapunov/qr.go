package lyapunov

import "math"

// qrEpsilon floors the QR diagonal before the logarithm so a
// near-degenerate tangent direction yields a large negative contribution
// instead of -Inf.
const qrEpsilon = 1e-12

// orthonormalize performs modified Gram-Schmidt on the tangent basis in
// place and returns ln of each (floored) diagonal entry R_ii. After the
// call the basis columns are orthonormal.
func orthonormalize(basis [][]float64) [3]float64 {
	var logs [3]float64

	for i := range basis {
		v := basis[i]
		for j := 0; j < i; j++ {
			q := basis[j]
			r := v[0]*q[0] + v[1]*q[1] + v[2]*q[2]
			v[0] -= r * q[0]
			v[1] -= r * q[1]
			v[2] -= r * q[2]
		}
		rii := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		if rii < qrEpsilon {
			rii = qrEpsilon
		}
		logs[i] = math.Log(rii)
		inv := 1 / rii
		v[0] *= inv
		v[1] *= inv
		v[2] *= inv
	}

	return logs
}
