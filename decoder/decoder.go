package decoder

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/hakobera/go-ivf-decoder/decoder/ivf"
	"github.com/hakobera/go-ivf-decoder/decoder/source"
	"github.com/sirupsen/logrus"
)

// Decoder feeds compressed frames from a source into an Engine and buffers
// the decoded frames for a consumer. It is driven by the caller: every
// Advance performs one bounded step of work and never blocks.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	id      string
	cfg     Config
	log     *logrus.Entry
	factory EngineFactory

	src     source.Source
	parser  *ivf.Parser
	engine  Engine
	queue   *FrameQueue
	pending bool   // the last drain stopped on a full queue
	pts     uint64 // of the last submitted frame
	err     error
	stats   Stats
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithEngine uses factory instead of the engine registered for the stream's
// codec identifier.
func WithEngine(factory EngineFactory) Option {
	return func(d *Decoder) {
		d.factory = factory
	}
}

// New returns a decoder without a source.
func New(cfg Config, opts ...Option) *Decoder {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = ivf.DefaultMaxFrameSize
	}

	d := &Decoder{
		id:    uuid.New().String(),
		cfg:   cfg,
		queue: NewFrameQueue(cfg.QueueCapacity),
	}
	d.log = logrus.WithField("decoder_id", d.id)
	for _, opt := range opts {
		opt(d)
	}

	d.log.WithFields(logrus.Fields{
		"function":       "New",
		"queue_capacity": cfg.QueueCapacity,
		"max_frame_size": cfg.MaxFrameSize,
	}).Info("Decoder created")
	return d
}

// ID returns the identifier used in log entries.
func (d *Decoder) ID() string {
	return d.id
}

// SetSource attaches src. A previously attached source, its engine and any
// queued frames are released, and decoding restarts with the header of src.
func (d *Decoder) SetSource(src source.Source) {
	d.reset()
	d.src = src
	if src != nil {
		d.parser = ivf.NewParser(src, d.cfg.MaxFrameSize)
	}

	d.log.WithFields(logrus.Fields{
		"function": "SetSource",
		"source":   fmt.Sprintf("%T", src),
	}).Debug("Source attached")
}

// Advance performs one step: parse the header if needed, read at most one
// compressed frame, submit it and queue every image the engine has ready.
//
// It returns nil when the step made progress or had to wait, either for more
// input or for the consumer to pull frames. Terminal errors
// (ivf.ErrMalformedHeader, ivf.ErrFrameTooLarge, ivf.ErrTruncatedStream,
// ErrCodecInit) are returned by every later call. ErrCodecSubmission reports a
// lost frame; the next call continues with the following one.
func (d *Decoder) Advance() error {
	if d.err != nil {
		return d.err
	}
	if d.src == nil {
		return ErrNoSource
	}

	if d.parser.State() == ivf.StateUnparsed {
		if err := d.start(); err != nil {
			if errors.Is(err, ivf.ErrInsufficientData) {
				return nil
			}
			return d.fail(err)
		}
	}

	if d.queue.IsFull() {
		d.stats.Backpressure++
		return nil
	}

	if !d.pending {
		pkt, err := d.parser.NextFrame()
		switch {
		case err == nil:
		case errors.Is(err, ivf.ErrInsufficientData), errors.Is(err, io.EOF):
			return nil
		default:
			return d.fail(err)
		}

		d.stats.PacketsRead++
		d.stats.BytesRead += uint64(len(pkt.Data))

		if err := d.engine.Decode(pkt.Data); err != nil {
			d.stats.PacketsRejected++
			d.log.WithFields(logrus.Fields{
				"function": "Advance",
				"pts":      pkt.Header.PTS,
				"size":     pkt.Header.Size,
				"error":    err.Error(),
			}).Warn("Engine rejected frame, dropping it")
			return fmt.Errorf("%w: pts %d (%d bytes): %w", ErrCodecSubmission, pkt.Header.PTS, pkt.Header.Size, err)
		}
		d.pts = pkt.Header.PTS
	}

	d.drain()
	return nil
}

// start parses the header and initializes the engine.
func (d *Decoder) start() error {
	info, err := d.parser.ParseHeader()
	if err != nil {
		return err
	}

	engine, err := openEngine(d.factory, info, d.cfg)
	if err != nil {
		return err
	}
	d.engine = engine
	d.parser.MarkStreaming()

	d.log.WithFields(logrus.Fields{
		"function": "start",
		"fourcc":   info.FourCC.String(),
		"width":    info.Width,
		"height":   info.Height,
		"engine":   fmt.Sprintf("%T", engine),
	}).Info("Engine initialized")
	return nil
}

// drain moves ready images from the engine into the queue until either runs
// out.
func (d *Decoder) drain() {
	info, _ := d.parser.Info()

	for !d.queue.IsFull() {
		img := d.engine.NextImage()
		if img == nil {
			d.pending = false
			return
		}

		data, err := packImage(img)
		if err != nil {
			d.stats.FramesDropped++
			d.log.WithFields(logrus.Fields{
				"function": "drain",
				"pts":      d.pts,
				"error":    err.Error(),
			}).Warn("Skipping invalid image")
			continue
		}

		d.queue.Push(&Frame{
			Timestamp:    info.Seconds(d.pts),
			PTS:          d.pts,
			Width:        img.Width(),
			Height:       img.Height(),
			HighBitDepth: img.HighBitDepth(),
			Data:         data,
		})
		d.stats.FramesDecoded++
	}

	d.pending = true
	d.log.WithFields(logrus.Fields{
		"function": "drain",
		"buffered": d.queue.Len(),
	}).Debug("Frame queue full")
}

func (d *Decoder) fail(err error) error {
	d.err = err
	d.log.WithFields(logrus.Fields{
		"function": "Advance",
		"error":    err.Error(),
		"buffered": d.queue.Len(),
	}).Error("Decoding stopped")
	return err
}

// Pull removes and returns the oldest decoded frame, or nil when none is
// buffered. The caller owns the frame and may call Release when done with it.
func (d *Decoder) Pull() *Frame {
	f := d.queue.Pop()
	if f != nil {
		d.stats.FramesPulled++
	}
	return f
}

// Finished reports whether the source has been read completely. Frames may
// still be buffered; keep calling Pull until it returns nil.
func (d *Decoder) Finished() bool {
	return d.src != nil && d.src.Exhausted()
}

// Drained reports whether no more frames will be produced: the source is
// finished or decoding stopped with an error, and nothing is left to pull.
func (d *Decoder) Drained() bool {
	if d.queue.Len() > 0 {
		return false
	}
	if d.err != nil {
		return true
	}
	return d.Finished() && !d.pending
}

// Width returns the frame width from the header, or 0 before it is parsed.
func (d *Decoder) Width() int {
	info, _ := d.Info()
	return int(info.Width)
}

// Height returns the frame height from the header, or 0 before it is parsed.
func (d *Decoder) Height() int {
	info, _ := d.Info()
	return int(info.Height)
}

// Info returns the stream header. ok is false until it has been parsed.
func (d *Decoder) Info() (info ivf.StreamInfo, ok bool) {
	if d.parser == nil {
		return ivf.StreamInfo{}, false
	}
	return d.parser.Info()
}

// Buffered returns the number of frames waiting to be pulled.
func (d *Decoder) Buffered() int {
	return d.queue.Len()
}

// Err returns the terminal error, if decoding stopped.
func (d *Decoder) Err() error {
	return d.err
}

// Stats returns a snapshot of the decoder counters.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Close releases the source, the engine and every queued frame.
func (d *Decoder) Close() error {
	err := d.reset()
	d.log.WithFields(logrus.Fields{
		"function":       "Close",
		"packets_read":   d.stats.PacketsRead,
		"frames_decoded": d.stats.FramesDecoded,
		"frames_pulled":  d.stats.FramesPulled,
	}).Info("Decoder closed")
	return err
}

func (d *Decoder) reset() error {
	var errs []error
	if d.engine != nil {
		if err := d.engine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close engine: %w", err))
		}
		d.engine = nil
	}
	if d.src != nil {
		if err := d.src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close source: %w", err))
		}
		d.src = nil
	}
	d.parser = nil
	d.queue.Clear()
	d.pending = false
	d.pts = 0
	d.err = nil
	return errors.Join(errs...)
}
