package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImage is a planar image with explicit strides.
type fakeImage struct {
	width, height  int
	planes         [][]byte
	strides        []int
	shiftX, shiftY uint
	highBitDepth   bool
}

func (f *fakeImage) Width() int               { return f.width }
func (f *fakeImage) Height() int              { return f.height }
func (f *fakeImage) NumPlanes() int           { return len(f.planes) }
func (f *fakeImage) Plane(n int) []byte       { return f.planes[n] }
func (f *fakeImage) Stride(n int) int         { return f.strides[n] }
func (f *fakeImage) ChromaShift() (x, y uint) { return f.shiftX, f.shiftY }
func (f *fakeImage) HighBitDepth() bool       { return f.highBitDepth }

func TestPackImageHonorsStride(t *testing.T) {
	img := &fakeImage{
		width:  3,
		height: 2,
		planes: [][]byte{
			{1, 2, 3, 0, 0, 4, 5, 6},
			{7, 8, 0, 0},
			{9, 10, 0},
		},
		strides: []int{5, 3, 3},
		shiftX:  1,
		shiftY:  1,
	}

	buf, err := packImage(img)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, buf)
}

func TestPackImageHighBitDepth(t *testing.T) {
	img := &fakeImage{
		width:  2,
		height: 1,
		planes: [][]byte{
			{1, 0, 2, 0, 0xFF, 0xFF},
			{3, 0},
			{4, 0},
		},
		strides:      []int{6, 2, 2},
		shiftX:       1,
		shiftY:       1,
		highBitDepth: true,
	}

	buf, err := packImage(img)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 2, 0, 3, 0, 4, 0}, buf)
}

func TestPackImageNoSubsampling(t *testing.T) {
	w, h := 4, 4
	planes := [][]byte{make([]byte, w*h), make([]byte, w*h), make([]byte, w*h)}
	img := &fakeImage{width: w, height: h, planes: planes, strides: []int{w, w, w}}

	buf, err := packImage(img)
	require.NoError(t, err)
	assert.Len(t, buf, 3*w*h)
}

func TestPackImageShortPlane(t *testing.T) {
	img := &fakeImage{
		width:   4,
		height:  2,
		planes:  [][]byte{make([]byte, 5)},
		strides: []int{4},
	}

	_, err := packImage(img)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestFrameAccessors(t *testing.T) {
	var nilFrame *Frame
	assert.Equal(t, 0.0, nilFrame.Time())
	assert.Nil(t, nilFrame.Buffer())
	assert.Equal(t, 0, nilFrame.Size())
	nilFrame.Release()

	f := &Frame{Timestamp: 1.5, Data: []byte{1, 2, 3}}
	assert.Equal(t, 1.5, f.Time())
	assert.Equal(t, []byte{1, 2, 3}, f.Buffer())
	assert.Equal(t, 3, f.Size())

	f.Release()
	assert.Nil(t, f.Buffer())
	assert.Equal(t, 0, f.Size())
}
