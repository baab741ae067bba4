//go:build !darwin && !linux

package aom

func loadLibrary(string) error {
	return ErrLibraryUnavailable
}

func libraryPaths(configured string) []string {
	return nil
}
