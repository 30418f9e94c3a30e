package bench

import "math/rand/v2"

// matrix is a square row-major float32 matrix.
type matrix struct {
	n    int
	data []float32
}

func newMatrix(n int) matrix {
	return matrix{n: n, data: make([]float32, n*n)}
}

func randomMatrix(n int, rng *rand.Rand) matrix {
	m := newMatrix(n)
	for i := range m.data {
		m.data[i] = rng.Float32()
	}
	return m
}

// multiply stores a×b in c. The i-k-j loop order walks b and c row by row.
func multiply(a, b, c matrix) {
	n := a.n
	clear(c.data)
	for i := 0; i < n; i++ {
		row := c.data[i*n : (i+1)*n]
		for k := 0; k < n; k++ {
			aik := a.data[i*n+k]
			bRow := b.data[k*n : (k+1)*n]
			for j, bkj := range bRow {
				row[j] += aik * bkj
			}
		}
	}
}
