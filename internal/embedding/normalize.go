package embedding

import "github.com/hyperjump/ledgerlens/pkg/utils"

// NormalizeL2Slice normalizes the slice in place to unit L2 norm. A zero vector is left unchanged.
func NormalizeL2Slice(x []float32) {
	utils.NormalizeL2(x)
}

// MeanPool averages token rows of a [tokens, dims] hidden state over positions whose mask is 1.
func MeanPool(hidden []float32, mask []int64, dims int) []float32 {
	out := make([]float32, dims)
	var n float32
	for t, m := range mask {
		if m == 0 || (t+1)*dims > len(hidden) {
			continue
		}
		row := hidden[t*dims : (t+1)*dims]
		for j, v := range row {
			out[j] += v
		}
		n++
	}
	if n > 0 {
		for j := range out {
			out[j] /= n
		}
	}
	return out
}
