package encoding

import "strings"

const stderrTailBytes = 4096

// tailBuffer keeps the last stderrTailBytes written to it.
type tailBuffer struct {
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if overflow := len(t.buf) - stderrTailBytes; overflow > 0 {
		t.buf = append(t.buf[:0], t.buf[overflow:]...)
	}
	return len(p), nil
}

// String returns the retained tail, starting at a line boundary when one exists.
func (t *tailBuffer) String() string {
	text := string(t.buf)
	if len(t.buf) == stderrTailBytes {
		if idx := strings.IndexByte(text, '\n'); idx >= 0 && idx+1 < len(text) {
			text = text[idx+1:]
		}
	}
	return strings.TrimSpace(text)
}
