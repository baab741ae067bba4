// Package main provides C API bindings for the IVF decoder, so that C
// applications and other language runtimes can drive it.
//
// # Build Instructions
//
// To build as a C shared library:
//
//	go build -buildmode=c-shared -o libivfdec.so ./capi/
//
// This generates:
//   - libivfdec.so: The shared library
//   - libivfdec.h: Auto-generated C header file with function declarations
//
// # C API Usage
//
//	#include "libivfdec.h"
//
//	void *dec = ivfdec_new();
//	ivfdec_open_file(dec, "video.ivf");
//
//	while (!ivfdec_video_finished(dec)) {
//	    int status = ivfdec_run(dec);
//	    if (status != IVFDEC_OK && status != IVFDEC_ERR_CODEC_SUBMISSION) {
//	        break;
//	    }
//	    void *frame;
//	    while ((frame = ivfdec_get_frame(dec)) != NULL) {
//	        render(ivfdec_frame_get_buffer(frame),
//	               ivfdec_frame_get_size(frame),
//	               ivfdec_frame_get_time(frame));
//	    }
//	}
//	// Frames may remain buffered after the source is finished.
//	void *frame;
//	while ((frame = ivfdec_get_frame(dec)) != NULL) {
//	    render(...);
//	}
//
//	ivfdec_destroy(dec);
//
// # Input
//
// A decoder reads from exactly one source at a time:
//   - ivfdec_set_blob: a complete file held in memory (copied)
//   - ivfdec_open_file: a file on disk
//   - ivfdec_open_stream / ivfdec_push_bytes / ivfdec_end_stream: bytes
//     delivered incrementally, for example from a network socket
//   - ivfdec_open_rtp / ivfdec_push_rtp / ivfdec_end_rtp: RTP packets whose
//     payloads carry the IVF byte stream, reordered by sequence number
//
// Attaching a new source discards the previous one and every buffered frame.
//
// # Frame Lifetime
//
// The frame returned by ivfdec_get_frame and its buffer stay valid until the
// next ivfdec_get_frame or ivfdec_destroy on the same decoder. The buffer holds
// the planes one after another without row padding.
//
// # Error Handling
//
// ivfdec_run returns one of the IVFDEC_* status codes. Malformed headers,
// oversized frames, truncated streams and codec initialization failures stop
// the decoder; every later ivfdec_run returns the same code. A codec
// submission error only loses the rejected frame.
//
// # Thread Safety
//
// Each decoder handle is protected by its own mutex. Separate handles can be
// used from separate threads.
//
// # Configuration
//
// ivfdec_new_with_config reads a YAML file (queue_capacity, max_frame_size,
// log_level, log_format, aom.*, rtp.max_late). The IVFDEC_LOG_LEVEL
// environment variable overrides the configured log level.
package main
