package source

import (
	"fmt"
	"sync"

	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
)

// DefaultMaxLate is the reorder window used when NewRTP is given zero.
const DefaultMaxLate = 50

// RTP is a Stream fed with RTP packets whose payloads carry the container
// byte stream. Packets are released to the reader in sequence-number order.
// A missing packet is waited for until the newest packet is more than maxLate
// sequence numbers ahead of it; it is then skipped and counted as lost.
type RTP struct {
	stream *Stream

	mu      sync.Mutex
	maxLate uint16
	buffer  map[uint16]*rtp.Packet
	started bool
	next    uint16
	newest  uint16
	lost    uint64
	late    uint64
}

// NewRTP returns an RTP source with the given reorder window.
func NewRTP(maxLate uint16) *RTP {
	if maxLate == 0 {
		maxLate = DefaultMaxLate
	}
	return &RTP{
		stream:  NewStream(),
		maxLate: maxLate,
		buffer:  make(map[uint16]*rtp.Packet),
	}
}

// PushRaw unmarshals a raw RTP datagram and pushes it.
func (r *RTP) PushRaw(raw []byte) error {
	p := &rtp.Packet{}
	if err := p.Unmarshal(raw); err != nil {
		return fmt.Errorf("unmarshal rtp packet: %w", err)
	}
	// Unmarshal aliases raw; keep our own copy of the payload.
	p.Payload = append([]byte(nil), p.Payload...)
	return r.Push(p)
}

// Push adds a packet to the reorder buffer and releases every packet that is
// now in order.
func (r *RTP) Push(p *rtp.Packet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seq := p.SequenceNumber
	if !r.started {
		r.started = true
		r.next = seq
		r.newest = seq
	}

	if isBefore(seq, r.next) {
		r.late++
		logrus.WithFields(logrus.Fields{
			"function": "RTP.Push",
			"sequence": seq,
			"expected": r.next,
		}).Debug("Dropping late or duplicate packet")
		return nil
	}
	if _, dup := r.buffer[seq]; dup {
		r.late++
		return nil
	}

	r.buffer[seq] = p
	if isBefore(r.newest, seq) {
		r.newest = seq
	}
	return r.release()
}

// release writes in-order packets to the stream and skips gaps that fell out
// of the reorder window. Called with r.mu held.
func (r *RTP) release() error {
	for len(r.buffer) > 0 {
		if p, ok := r.buffer[r.next]; ok {
			delete(r.buffer, r.next)
			if _, err := r.stream.Write(p.Payload); err != nil {
				return err
			}
			r.next++
			continue
		}
		if seqnumDistance(r.newest, r.next) <= r.maxLate {
			return nil
		}

		logrus.WithFields(logrus.Fields{
			"function": "RTP.release",
			"missing":  r.next,
			"newest":   r.newest,
			"max_late": r.maxLate,
		}).Warn("Skipping lost RTP packet")

		r.lost++
		r.next++
	}
	return nil
}

// CloseWrite flushes the reorder buffer, skipping any remaining gaps, and
// marks the end of the stream.
func (r *RTP) CloseWrite() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.buffer) > 0 {
		if p, ok := r.buffer[r.next]; ok {
			delete(r.buffer, r.next)
			if _, err := r.stream.Write(p.Payload); err != nil {
				return err
			}
		} else {
			r.lost++
		}
		r.next++
	}
	r.stream.CloseWrite()
	return nil
}

// Lost returns the number of sequence numbers skipped as lost.
func (r *RTP) Lost() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lost
}

// Late returns the number of packets dropped as late or duplicate.
func (r *RTP) Late() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.late
}

// Read implements Source.
func (r *RTP) Read(p []byte) (int, error) {
	return r.stream.Read(p)
}

// Exhausted implements Source.
func (r *RTP) Exhausted() bool {
	return r.stream.Exhausted()
}

// Close implements Source.
func (r *RTP) Close() error {
	r.mu.Lock()
	r.buffer = make(map[uint16]*rtp.Packet)
	r.mu.Unlock()
	return r.stream.Close()
}

// seqnumDistance returns the distance between two sequence numbers, taking
// 16-bit wrap-around into account.
func seqnumDistance(x, y uint16) uint16 {
	diff := int32(x) - int32(y)
	if diff < 0 {
		diff = -diff
	}
	if diff > 0x8000 {
		diff = 0x10000 - diff
	}
	return uint16(diff)
}

// isBefore reports whether a precedes b in sequence-number order.
func isBefore(a, b uint16) bool {
	return a != b && b-a < 0x8000
}
