package aom

// subsample returns n divided by 2^shift, rounded up.
func subsample(n int, shift uint) int {
	return (n + (1 << shift) - 1) >> shift
}

// planeLen returns the bytes spanned by rows rows of rowBytes visible bytes
// placed stride bytes apart.
func planeLen(rows, stride, rowBytes int) int {
	if rows <= 0 || stride <= 0 {
		return 0
	}
	return (rows-1)*stride + rowBytes
}
