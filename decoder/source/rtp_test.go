package source

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rtpTest struct {
	message string
	packets []*rtp.Packet
	output  string
	lost    uint64
	maxLate uint16
}

func readAll(s Source) string {
	var out []byte
	buf := make([]byte, 16)
	for {
		n, err := s.Read(buf)
		out = append(out, buf[:n]...)
		if n == 0 || err != nil {
			return string(out)
		}
	}
}

func TestRTPOrdering(t *testing.T) {
	testData := []rtpTest{
		{
			message: "RTP should release in-order packets immediately",
			packets: []*rtp.Packet{
				{Header: rtp.Header{SequenceNumber: 5000}, Payload: []byte("a")},
				{Header: rtp.Header{SequenceNumber: 5001}, Payload: []byte("b")},
				{Header: rtp.Header{SequenceNumber: 5002}, Payload: []byte("c")},
			},
			output:  "abc",
			maxLate: 50,
		},
		{
			message: "RTP should reorder packets within the window",
			packets: []*rtp.Packet{
				{Header: rtp.Header{SequenceNumber: 5000}, Payload: []byte("a")},
				{Header: rtp.Header{SequenceNumber: 5002}, Payload: []byte("c")},
				{Header: rtp.Header{SequenceNumber: 5001}, Payload: []byte("b")},
			},
			output:  "abc",
			maxLate: 50,
		},
		{
			message: "RTP should hold packets after a gap smaller than maxLate",
			packets: []*rtp.Packet{
				{Header: rtp.Header{SequenceNumber: 5000}, Payload: []byte("a")},
				{Header: rtp.Header{SequenceNumber: 5007}, Payload: []byte("h")},
				{Header: rtp.Header{SequenceNumber: 5008}, Payload: []byte("i")},
			},
			output:  "a",
			maxLate: 50,
		},
		{
			message: "RTP should skip a gap once it is older than maxLate",
			packets: []*rtp.Packet{
				{Header: rtp.Header{SequenceNumber: 5000}, Payload: []byte("a")},
				{Header: rtp.Header{SequenceNumber: 5007}, Payload: []byte("h")},
				{Header: rtp.Header{SequenceNumber: 5008}, Payload: []byte("i")},
			},
			output:  "ahi",
			lost:    6,
			maxLate: 1,
		},
		{
			message: "RTP should drop duplicates and late packets",
			packets: []*rtp.Packet{
				{Header: rtp.Header{SequenceNumber: 10}, Payload: []byte("a")},
				{Header: rtp.Header{SequenceNumber: 11}, Payload: []byte("b")},
				{Header: rtp.Header{SequenceNumber: 10}, Payload: []byte("X")},
				{Header: rtp.Header{SequenceNumber: 9}, Payload: []byte("Y")},
				{Header: rtp.Header{SequenceNumber: 12}, Payload: []byte("c")},
			},
			output:  "abc",
			maxLate: 50,
		},
		{
			message: "RTP should follow sequence numbers across wrap-around",
			packets: []*rtp.Packet{
				{Header: rtp.Header{SequenceNumber: 0xFFFE}, Payload: []byte("a")},
				{Header: rtp.Header{SequenceNumber: 0x0000}, Payload: []byte("c")},
				{Header: rtp.Header{SequenceNumber: 0xFFFF}, Payload: []byte("b")},
				{Header: rtp.Header{SequenceNumber: 0x0001}, Payload: []byte("d")},
			},
			output:  "abcd",
			maxLate: 50,
		},
	}

	t.Run("Read", func(t *testing.T) {
		assert := assert.New(t)

		for _, t := range testData {
			s := NewRTP(t.maxLate)
			for _, p := range t.packets {
				assert.NoError(s.Push(p), t.message)
			}

			assert.Equal(t.output, readAll(s), t.message)
			assert.Equal(t.lost, s.Lost(), t.message)
		}
	})
}

func TestRTPCloseWriteFlushesGaps(t *testing.T) {
	s := NewRTP(50)
	require.NoError(t, s.Push(&rtp.Packet{Header: rtp.Header{SequenceNumber: 1}, Payload: []byte("a")}))
	require.NoError(t, s.Push(&rtp.Packet{Header: rtp.Header{SequenceNumber: 3}, Payload: []byte("c")}))
	assert.False(t, s.Exhausted())

	require.NoError(t, s.CloseWrite())
	assert.Equal(t, "ac", readAll(s))
	assert.Equal(t, uint64(1), s.Lost())
	assert.True(t, s.Exhausted())
}

func TestRTPPushRaw(t *testing.T) {
	s := NewRTP(0)
	pkt := &rtp.Packet{
		Header:  rtp.Header{Version: 2, PayloadType: 96, SequenceNumber: 42, Timestamp: 9000, SSRC: 1},
		Payload: []byte("DKIF"),
	}
	raw, err := pkt.Marshal()
	require.NoError(t, err)

	require.NoError(t, s.PushRaw(raw))
	raw[len(raw)-1] = 'X'
	assert.Equal(t, "DKIF", readAll(s))

	assert.Error(t, s.PushRaw([]byte{0x80}))
}

func TestSeqnumDistance(t *testing.T) {
	testData := []struct {
		x uint16
		y uint16
		d uint16
	}{
		{0x0001, 0x0003, 0x0002},
		{0x0003, 0x0001, 0x0002},
		{0xFFF3, 0xFFF1, 0x0002},
		{0xFFF1, 0xFFF3, 0x0002},
		{0xFFFF, 0x0001, 0x0002},
		{0x0001, 0xFFFF, 0x0002},
	}

	for _, data := range testData {
		if ret := seqnumDistance(data.x, data.y); ret != data.d {
			t.Errorf("seqnumDistance(%d, %d) returned %d which must be %d",
				data.x, data.y, ret, data.d)
		}
	}
}
