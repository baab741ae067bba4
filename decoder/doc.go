// Package decoder turns an IVF byte stream into decoded frames.
//
// A Decoder reads compressed frames from a source.Source, hands them to an
// Engine and keeps up to Config.QueueCapacity decoded frames buffered for the
// consumer. All work happens inside Advance, which never blocks, so the
// decoder can be driven from a render loop or a timer:
//
//	dec := decoder.New(decoder.DefaultConfig())
//	defer dec.Close()
//
//	src, err := source.Open("clip.ivf")
//	if err != nil {
//	    return err
//	}
//	dec.SetSource(src)
//
//	for !dec.Drained() {
//	    if err := dec.Advance(); err != nil && !errors.Is(err, decoder.ErrCodecSubmission) {
//	        return err
//	    }
//	    if f := dec.Pull(); f != nil {
//	        render(f.Buffer())
//	        f.Release()
//	    }
//	}
//
// Engines register themselves per codec identifier; import the engine
// package for the codecs you need:
//
//	import _ "github.com/hakobera/go-ivf-decoder/decoder/aom" // AV01
//	import _ "github.com/hakobera/go-ivf-decoder/decoder/raw" // I420, I444
package decoder
