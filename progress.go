package ftp

import (
	"io"
	"time"
)

// ProgressReader wraps an io.Reader and reports progress via a callback.
// Total is the expected size of the stream, when known; pass 0 if it
// isn't (the callback still fires with the running byte count). Elapsed
// is measured from the first Read call, letting callers derive a
// transfer rate without tracking their own clock.
type ProgressReader struct {
	// Reader is the underlying reader
	Reader io.Reader

	// Total is the expected number of bytes to be read, or 0 if unknown.
	Total int64

	// Callback is called after each Read with the bytes transferred so
	// far, Total, and the time elapsed since the first Read.
	Callback func(transferred, total int64, elapsed time.Duration)

	// read tracks the total bytes read
	read int64
	// start is set on the first Read
	start time.Time
}

// Transferred returns the number of bytes read so far.
func (pr *ProgressReader) Transferred() int64 { return pr.read }

// Read implements io.Reader.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	if pr.read == 0 && n > 0 {
		pr.start = time.Now()
	}
	pr.read += int64(n)
	if pr.Callback != nil && n > 0 {
		pr.Callback(pr.read, pr.Total, time.Since(pr.start))
	}
	return n, err
}

// ProgressWriter wraps an io.Writer and reports progress via a callback.
// Total is the expected size of the stream, when known; pass 0 if it
// isn't.
type ProgressWriter struct {
	// Writer is the underlying writer
	Writer io.Writer

	// Total is the expected number of bytes to be written, or 0 if
	// unknown.
	Total int64

	// Callback is called after each Write with the bytes transferred so
	// far, Total, and the time elapsed since the first Write.
	Callback func(transferred, total int64, elapsed time.Duration)

	// written tracks the total bytes written
	written int64
	// start is set on the first Write
	start time.Time
}

// Transferred returns the number of bytes written so far.
func (pw *ProgressWriter) Transferred() int64 { return pw.written }

// Write implements io.Writer.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	if pw.written == 0 && n > 0 {
		pw.start = time.Now()
	}
	pw.written += int64(n)
	if pw.Callback != nil && n > 0 {
		pw.Callback(pw.written, pw.Total, time.Since(pw.start))
	}
	return n, err
}
