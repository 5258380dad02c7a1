// Package vector adapts float32 embeddings to gonum's float64 routines for
// the similarity math the matcher needs.
package vector

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// unit widens v and scales it to unit length. A zero vector yields nil.
func unit(v []float32) []float64 {
	w := widen(v)
	n := floats.Norm(w, 2)
	if n == 0 {
		return nil
	}
	floats.Scale(1/n, w)
	return w
}

// dot treats nil as a zero vector and ignores the tail of the longer slice.
func dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	return floats.Dot(a[:n], b[:n])
}

// Cosine returns the cosine similarity of a and b. Zero-length or
// zero-norm vectors have similarity 0.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	return dot(unit(a[:n]), unit(b[:n]))
}

// Matrix returns the pairwise cosine similarity of rows × cols.
func Matrix(rows, cols [][]float32) [][]float64 {
	ucols := make([][]float64, len(cols))
	for j, c := range cols {
		ucols[j] = unit(c)
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		ur := unit(r)
		out[i] = make([]float64, len(cols))
		for j, c := range ucols {
			out[i][j] = dot(ur, c)
		}
	}
	return out
}

// ColumnMax returns, for every column of m, the maximum value over all rows.
// An empty matrix yields nil.
func ColumnMax(m [][]float64) []float64 {
	if len(m) == 0 || len(m[0]) == 0 {
		return nil
	}
	out := make([]float64, len(m[0]))
	col := make([]float64, len(m))
	for j := range out {
		for i, row := range m {
			col[i] = row[j]
		}
		out[j] = floats.Max(col)
	}
	return out
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Normalize scales v to unit length in place. A zero vector is left as is.
func Normalize(v []float32) {
	u := unit(v)
	if u == nil {
		return
	}
	for i, x := range u {
		v[i] = float32(x)
	}
}
