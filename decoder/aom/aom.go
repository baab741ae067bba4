// Package aom decodes AV1 streams with libaom. The library is loaded at
// runtime with purego, so building the package needs neither cgo nor the
// libaom headers.
//
// Library locations checked (in order):
//   - AOM_LIB_PATH environment variable
//   - aom.library_path of the decoder configuration
//   - System library names and paths
//
// Importing the package registers the engine for the AV01 codec identifier.
package aom

import (
	"errors"

	"github.com/hakobera/go-ivf-decoder/decoder"
	"github.com/hakobera/go-ivf-decoder/decoder/ivf"
)

// LibraryPathEnv names the environment variable holding an explicit libaom
// path.
const LibraryPathEnv = "AOM_LIB_PATH"

var (
	// ErrLibraryUnavailable indicates libaom could not be loaded.
	ErrLibraryUnavailable = errors.New("aom: libaom not available")

	// ErrDecode indicates libaom rejected a compressed frame.
	ErrDecode = errors.New("aom: decode failed")

	// ErrClosed indicates use of a closed engine.
	ErrClosed = errors.New("aom: engine closed")
)

// Constants from aom_codec.h and aom_image.h.
const (
	codecOK = 0

	imgFmtHighBitDepth = 0x800
)

// codecCtx matches aom_codec_ctx_t.
type codecCtx struct {
	name      uintptr
	iface     uintptr
	err       int32
	_         int32
	errDetail uintptr
	initFlags int64
	config    uintptr
	priv      uintptr
}

// decCfg matches aom_codec_dec_cfg_t.
type decCfg struct {
	threads          uint32
	w                uint32
	h                uint32
	allowLowbitdepth uint32
}

// aomImage matches the leading fields of aom_image_t.
type aomImage struct {
	fmt          int32
	cp           int32
	tc           int32
	mc           int32
	monochrome   int32
	csp          int32
	colorRange   int32
	w            uint32
	h            uint32
	bitDepth     uint32
	dw           uint32
	dh           uint32
	rw           uint32
	rh           uint32
	xChromaShift uint32
	yChromaShift uint32
	planes       [3]uintptr
	stride       [3]int32
	sz           uint64
	bps          int32
}

// libaom function pointers, bound by loadLibrary.
var (
	aomCodecAV1Dx       func() uintptr
	aomCodecDecInitVer  func(ctx, iface, cfg uintptr, flags int64, ver int32) int32
	aomCodecDecode      func(ctx, data uintptr, size uint64, userPriv uintptr) int32
	aomCodecGetFrame    func(ctx, iter uintptr) uintptr
	aomCodecDestroy     func(ctx uintptr) int32
	aomCodecError       func(ctx uintptr) string
	aomCodecErrorDetail func(ctx uintptr) string
)

func init() {
	decoder.RegisterEngine(ivf.FourCCAV1, func(info ivf.StreamInfo, cfg decoder.Config) (decoder.Engine, error) {
		e, err := New(info, cfg)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
}
