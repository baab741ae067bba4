//go:build darwin || linux

package aom

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/sirupsen/logrus"
)

var (
	libOnce    sync.Once
	libHandle  uintptr
	libInitErr error
)

// loadLibrary loads libaom once per process. configured is tried after the
// environment override; later calls reuse the outcome of the first.
func loadLibrary(configured string) error {
	libOnce.Do(func() {
		libInitErr = openLibrary(libraryPaths(configured))
	})
	return libInitErr
}

func openLibrary(paths []string) error {
	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		if err := bindSymbols(handle); err != nil {
			purego.Dlclose(handle)
			lastErr = err
			continue
		}
		libHandle = handle

		logrus.WithFields(logrus.Fields{
			"function": "loadLibrary",
			"path":     path,
		}).Info("Loaded libaom")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"function": "loadLibrary",
		"tried":    len(paths),
		"error":    fmt.Sprint(lastErr),
	}).Warn("libaom not found")
	return fmt.Errorf("%w: %v", ErrLibraryUnavailable, lastErr)
}

func bindSymbols(handle uintptr) error {
	symbols := []struct {
		fptr any
		name string
	}{
		{&aomCodecAV1Dx, "aom_codec_av1_dx"},
		{&aomCodecDecInitVer, "aom_codec_dec_init_ver"},
		{&aomCodecDecode, "aom_codec_decode"},
		{&aomCodecGetFrame, "aom_codec_get_frame"},
		{&aomCodecDestroy, "aom_codec_destroy"},
		{&aomCodecError, "aom_codec_error"},
		{&aomCodecErrorDetail, "aom_codec_error_detail"},
	}

	for _, s := range symbols {
		sym, err := purego.Dlsym(handle, s.name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", s.name, err)
		}
		purego.RegisterFunc(s.fptr, sym)
	}
	return nil
}

func libraryPaths(configured string) []string {
	var paths []string
	if envPath := os.Getenv(LibraryPathEnv); envPath != "" {
		paths = append(paths, envPath)
	}
	if configured != "" {
		paths = append(paths, configured)
	}

	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			"libaom.3.dylib",
			"libaom.dylib",
			"/opt/homebrew/lib/libaom.dylib",
			"/usr/local/lib/libaom.dylib",
		)
	default:
		paths = append(paths,
			"libaom.so.3",
			"libaom.so",
			"/usr/local/lib/libaom.so",
			"/usr/lib/libaom.so",
		)
	}
	return paths
}
