package decoder

// Stats counts the work done by a Decoder.
type Stats struct {
	PacketsRead     uint64 // compressed frames extracted from the container
	BytesRead       uint64 // compressed payload bytes
	PacketsRejected uint64 // compressed frames the engine refused
	FramesDecoded   uint64 // images queued
	FramesDropped   uint64 // images skipped as invalid
	FramesPulled    uint64
	Backpressure    uint64 // steps skipped because the queue was full
}
