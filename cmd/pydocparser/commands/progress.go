package commands

import (
	"io"
	"time"

	"pydocparser/lib/scrapers/pydocs"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// progressBars renders one bar per sub-page loop. The renderer stops by
// itself once every bar is done.
type progressBars struct {
	writer progress.Writer
	// rendered is closed when the current render loop returns.
	rendered chan struct{}
}

func newProgressBars(out io.Writer) *progressBars {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(true)
	pw.SetTrackerLength(30)
	pw.SetMessageLength(16)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true
	return &progressBars{writer: pw}
}

func (p *progressBars) rendering() bool {
	if p.rendered == nil {
		return false
	}
	select {
	case <-p.rendered:
		return false
	default:
		return true
	}
}

func (p *progressBars) Track(message string, total int) pydocs.Tracker {
	tracker := &progress.Tracker{
		Message: message,
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}
	// appended before rendering starts so auto stop never sees an empty writer
	p.writer.AppendTracker(tracker)

	if !p.rendering() {
		rendered := make(chan struct{})
		p.rendered = rendered
		go func() {
			defer close(rendered)
			p.writer.Render()
		}()
	}
	return barTracker{tracker: tracker}
}

// Stop waits for the renderer to draw the final state of every bar.
func (p *progressBars) Stop() {
	if p.rendered == nil {
		return
	}
	<-p.rendered
}

type barTracker struct {
	tracker *progress.Tracker
}

func (t barTracker) Increment() {
	t.tracker.Increment(1)
}

func (t barTracker) Done() {
	t.tracker.MarkAsDone()
}
