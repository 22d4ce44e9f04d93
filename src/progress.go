package main

import (
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ProgressWriter counts streamed bytes and, when given a container, drives
// an mpb bar. total may be negative for an unknown length.
type ProgressWriter struct {
	bar       *mpb.Bar
	written   int64
	lastWrite time.Time
}

// NewProgressWriter adds a new progress bar to the given mpb container. A
// nil or already shut down container only counts bytes.
func NewProgressWriter(container *mpb.Progress, total int64, description string) *ProgressWriter {
	progressWriter := &ProgressWriter{lastWrite: time.Now()}

	if container == nil {
		return progressWriter
	}

	bar, err := container.Add(max(total, 0), mpb.BarStyle().Build(),
		mpb.PrependDecorators(
			decor.Name(description, decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .2f / % .2f"),
			decor.Name(" "),
			decor.EwmaSpeed(decor.SizeB1024(0), "% .2f", 30),
			decor.Name(" ETA:"),
			decor.EwmaETA(decor.ET_STYLE_GO, 30),
		),
	)
	if err == nil {
		progressWriter.bar = bar
	}

	return progressWriter
}

// Write implements io.Writer and updates the bar with the time since the
// previous write, which is what the speed decorators expect. It never fails.
func (progressWriter *ProgressWriter) Write(data []byte) (int, error) {
	n := len(data)
	progressWriter.written += int64(n)

	now := time.Now()

	if progressWriter.bar != nil {
		progressWriter.bar.EwmaIncrBy(n, now.Sub(progressWriter.lastWrite))
	}

	progressWriter.lastWrite = now

	return n, nil
}

// Written returns the number of bytes seen so far.
func (progressWriter *ProgressWriter) Written() int64 {
	return progressWriter.written
}

// Finish marks the bar as complete.
func (progressWriter *ProgressWriter) Finish() {
	if progressWriter.bar != nil {
		progressWriter.bar.SetTotal(-1, true)
	}
}

// Abort removes the bar after a failed transfer.
func (progressWriter *ProgressWriter) Abort() {
	if progressWriter.bar != nil {
		progressWriter.bar.Abort(false)
	}
}
