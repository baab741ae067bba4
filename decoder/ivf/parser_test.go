package ivf

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/hakobera/go-ivf-decoder/decoder/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testInfo = StreamInfo{
	FourCC:              FourCCAV1,
	Width:               4,
	Height:              4,
	TimeBaseNumerator:   1,
	TimeBaseDenominator: 25,
}

func buildStream(t *testing.T, info StreamInfo, payloads ...[]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, info)
	require.NoError(t, err)
	for i, p := range payloads {
		require.NoError(t, w.WriteFrame(p, uint64(i)))
	}
	return buf.Bytes()
}

func streamingParser(t *testing.T, src source.Source) *Parser {
	t.Helper()

	p := NewParser(src, 0)
	_, err := p.ParseHeader()
	require.NoError(t, err)
	p.MarkStreaming()
	return p
}

func TestParseHeader(t *testing.T) {
	data := buildStream(t, testInfo)
	p := NewParser(source.NewMemory(data), 0)

	_, ok := p.Info()
	assert.False(t, ok)
	assert.Equal(t, StateUnparsed, p.State())

	info, err := p.ParseHeader()
	require.NoError(t, err)
	assert.Equal(t, testInfo, info)
	assert.Equal(t, StateHeaderValidated, p.State())

	p.MarkStreaming()
	assert.Equal(t, StateStreaming, p.State())

	_, err = p.NextFrame()
	assert.ErrorIs(t, err, io.EOF, "no records must end cleanly")
}

func TestParseHeaderMalformed(t *testing.T) {
	good := buildStream(t, testInfo)

	badSignature := append([]byte(nil), good...)
	copy(badSignature, "RIFF")

	badVersion := append([]byte(nil), good...)
	binary.LittleEndian.PutUint16(badVersion[4:6], 1)

	cases := []struct {
		name string
		data []byte
	}{
		{"bad_signature", badSignature},
		{"bad_version", badVersion},
		{"truncated", good[:20]},
		{"empty", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser(source.NewMemory(tc.data), 0)

			_, err := p.ParseHeader()
			assert.ErrorIs(t, err, ErrMalformedHeader)
			assert.Equal(t, StateUnparsed, p.State())

			_, err = p.ParseHeader()
			assert.ErrorIs(t, err, ErrMalformedHeader, "error must be sticky")
		})
	}
}

func TestParseHeaderIncremental(t *testing.T) {
	data := buildStream(t, testInfo, []byte("payload"))
	s := source.NewStream()
	p := NewParser(s, 0)

	for i := 0; i < HeaderSize; i++ {
		_, err := p.ParseHeader()
		require.ErrorIs(t, err, ErrInsufficientData, "byte %d", i)
		s.Write(data[i : i+1])
	}

	info, err := p.ParseHeader()
	require.NoError(t, err)
	assert.Equal(t, testInfo, info)
}

func TestNextFrame(t *testing.T) {
	payloads := [][]byte{[]byte("first"), {}, bytes.Repeat([]byte{0xAB}, 10000)}
	p := streamingParser(t, source.NewMemory(buildStream(t, testInfo, payloads...)))

	for i, want := range payloads {
		pkt, err := p.NextFrame()
		require.NoError(t, err, "frame %d", i)
		assert.Equal(t, uint32(len(want)), pkt.Header.Size)
		assert.Equal(t, uint64(i), pkt.Header.PTS)
		assert.Equal(t, len(want), len(pkt.Data))
		assert.True(t, bytes.Equal(want, pkt.Data), "frame %d payload", i)
	}

	_, err := p.NextFrame()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, uint64(3), p.Frames())
}

func TestNextFrameBeforeStreaming(t *testing.T) {
	p := NewParser(source.NewMemory(buildStream(t, testInfo)), 0)
	_, err := p.NextFrame()
	assert.ErrorIs(t, err, ErrNotStreaming)

	_, err = p.ParseHeader()
	require.NoError(t, err)
	_, err = p.NextFrame()
	assert.ErrorIs(t, err, ErrNotStreaming)
}

func TestNextFrameIncremental(t *testing.T) {
	payloads := [][]byte{[]byte("hello"), []byte("incremental"), []byte("world")}
	data := buildStream(t, testInfo, payloads...)

	s := source.NewStream()
	s.Write(data[:HeaderSize])
	p := streamingParser(t, s)

	var got []string
	for i := HeaderSize; i < len(data); i++ {
		s.Write(data[i : i+1])
		pkt, err := p.NextFrame()
		if err != nil {
			require.ErrorIs(t, err, ErrInsufficientData, "offset %d", i)
			continue
		}
		got = append(got, string(pkt.Data))
	}
	assert.Equal(t, []string{"hello", "incremental", "world"}, got)

	_, err := p.NextFrame()
	assert.ErrorIs(t, err, ErrInsufficientData, "open stream must not end")

	s.CloseWrite()
	_, err = p.NextFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNextFrameTooLarge(t *testing.T) {
	data := buildStream(t, testInfo, make([]byte, 64))
	p := NewParser(source.NewMemory(data), 32)
	_, err := p.ParseHeader()
	require.NoError(t, err)
	p.MarkStreaming()

	_, err = p.NextFrame()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Equal(t, 0, p.ScratchCap(), "oversized payload must not be allocated")

	_, err = p.NextFrame()
	assert.ErrorIs(t, err, ErrFrameTooLarge, "error must be sticky")
}

func TestNextFrameDefaultCeiling(t *testing.T) {
	data := buildStream(t, testInfo)
	var rec [FrameHeaderSize]byte
	binary.LittleEndian.PutUint32(rec[0:4], DefaultMaxFrameSize+1)
	data = append(data, rec[:]...)

	p := streamingParser(t, source.NewMemory(data))
	_, err := p.NextFrame()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestNextFrameTruncated(t *testing.T) {
	data := buildStream(t, testInfo, []byte("complete"), []byte("cut short"))

	cases := []struct {
		name string
		cut  int
	}{
		{"inside_payload", 3},
		{"inside_record_header", len("cut short") + 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := streamingParser(t, source.NewMemory(data[:len(data)-tc.cut]))

			pkt, err := p.NextFrame()
			require.NoError(t, err)
			assert.Equal(t, "complete", string(pkt.Data))

			_, err = p.NextFrame()
			assert.ErrorIs(t, err, ErrTruncatedStream)
		})
	}
}

func TestScratchGrowsByDoubling(t *testing.T) {
	payloads := [][]byte{make([]byte, 100), make([]byte, 5000), make([]byte, 20000), make([]byte, 10)}
	p := streamingParser(t, source.NewMemory(buildStream(t, testInfo, payloads...)))

	caps := []int{}
	for range payloads {
		_, err := p.NextFrame()
		require.NoError(t, err)
		caps = append(caps, p.ScratchCap())
	}
	assert.Equal(t, []int{minScratch, 2 * minScratch, 8 * minScratch, 8 * minScratch}, caps)
}

func TestStreamInfoSeconds(t *testing.T) {
	assert.InDelta(t, 0.12, testInfo.Seconds(3), 1e-9)
	assert.Equal(t, 0.0, StreamInfo{}.Seconds(3))
}

func TestParseFourCC(t *testing.T) {
	f, err := ParseFourCC("AV01")
	require.NoError(t, err)
	assert.Equal(t, FourCCAV1, f)
	assert.Equal(t, "AV01", f.String())

	f, err = ParseFourCC("Y8")
	require.NoError(t, err)
	assert.Equal(t, "Y8  ", f.String())

	_, err = ParseFourCC("TOOLONG")
	assert.Error(t, err)
}
