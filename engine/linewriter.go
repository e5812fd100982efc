package engine

import (
	"bytes"
	"io"
	"strings"
)

// lineWriter echoes every byte to out as it arrives and hands each complete
// line to emit. exec.Cmd serialises writes when Stdout and Stderr share one
// writer, so no locking is needed.
type lineWriter struct {
	out  io.Writer
	emit func(string)
	buf  []byte
}

func newLineWriter(out io.Writer, emit func(string)) *lineWriter {
	return &lineWriter{out: out, emit: emit}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if w.out != nil {
		if _, err := w.out.Write(p); err != nil {
			return 0, err
		}
	}
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(string(w.buf[:i]), "\r")
		w.buf = w.buf[i+1:]
		if w.emit != nil {
			w.emit(line)
		}
	}
	return len(p), nil
}

// Flush delivers a trailing line that was not newline-terminated.
func (w *lineWriter) Flush() {
	if len(w.buf) == 0 {
		return
	}
	line := strings.TrimSuffix(string(w.buf), "\r")
	w.buf = nil
	if w.emit != nil {
		w.emit(line)
	}
}
