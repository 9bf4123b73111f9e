package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// jpegMagic is the SOI marker followed by a JFIF APP0 segment header.
var jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// WriteJPEGStub writes a file that content sniffers recognise as JPEG. The
// payload after the header is filler, so it is not a decodable image.
func WriteJPEGStub(t testing.TB, path string, size int64) {
	t.Helper()
	WriteFile(t, path, size)
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteAt(jpegMagic, 0); err != nil {
		t.Fatalf("write jpeg header %s: %v", path, err)
	}
}

// WriteVideoStub writes a file that sniffs as video/x-flv. Tests decide via
// probe fakes whether it carries a video track.
func WriteVideoStub(t testing.TB, path string, size int64) {
	t.Helper()
	WriteFile(t, path, size)
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteAt([]byte{'F', 'L', 'V', 0x01, 0x05}, 0); err != nil {
		t.Fatalf("write flv header %s: %v", path, err)
	}
}
