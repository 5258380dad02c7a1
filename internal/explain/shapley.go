package explain

import (
	"math/rand"

	"resume-matcher/internal/vector"
)

// valueFunc scores a coalition of job keywords. active[i] reports whether
// keyword i takes part.
type valueFunc func(active []bool) float64

// coverageValue returns the match score restricted to the active job
// keywords: the mean of their best similarity to any resume phrase, as a
// percentage. The empty coalition scores 0.
func coverageValue(resumeEmb, jobEmb [][]float32) valueFunc {
	best := vector.ColumnMax(vector.Matrix(resumeEmb, jobEmb))
	return func(active []bool) float64 {
		var sum float64
		n := 0
		for i, on := range active {
			if on && i < len(best) {
				sum += best[i]
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return sum / float64(n) * 100
	}
}

// exactShapley enumerates every coalition. Only feasible for small n.
func exactShapley(n int, v valueFunc) []float64 {
	size := 1 << n
	values := make([]float64, size)
	active := make([]bool, n)
	for mask := 0; mask < size; mask++ {
		for i := 0; i < n; i++ {
			active[i] = mask&(1<<i) != 0
		}
		values[mask] = v(active)
	}

	// weight[s] = s! (n-s-1)! / n!
	weight := make([]float64, n)
	for s := 0; s < n; s++ {
		w := 1.0
		for k := 1; k <= s; k++ {
			w *= float64(k)
		}
		for k := 1; k <= n-s-1; k++ {
			w *= float64(k)
		}
		for k := 1; k <= n; k++ {
			w /= float64(k)
		}
		weight[s] = w
	}

	phi := make([]float64, n)
	for mask := 0; mask < size; mask++ {
		s := popcount(mask)
		for i := 0; i < n; i++ {
			bit := 1 << i
			if mask&bit != 0 {
				continue
			}
			phi[i] += weight[s] * (values[mask|bit] - values[mask])
		}
	}
	return phi
}

// sampledShapley averages marginal contributions over random feature
// orderings. Each ordering distributes exactly v(all) - v(none), so the
// estimates always sum to that difference.
func sampledShapley(n int, v valueFunc, samples int, rng *rand.Rand) []float64 {
	phi := make([]float64, n)
	if n == 0 || samples <= 0 {
		return phi
	}
	active := make([]bool, n)
	for s := 0; s < samples; s++ {
		for i := range active {
			active[i] = false
		}
		prev := v(active)
		for _, i := range rng.Perm(n) {
			active[i] = true
			cur := v(active)
			phi[i] += cur - prev
			prev = cur
		}
	}
	for i := range phi {
		phi[i] /= float64(samples)
	}
	return phi
}

func popcount(x int) int {
	c := 0
	for ; x != 0; x &= x - 1 {
		c++
	}
	return c
}
