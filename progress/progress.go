package progress

import (
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/minio/pkg/console"
)

const (
	boundedTemplate    = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`
	continuousTemplate = `{{string . "prefix"}} {{counters . }} {{speed . }} {{etime . }}`
)

// ProgressBar wrapper structure
type ProgressBar struct {
	*pb.ProgressBar
}

// NewProgressBar - instantiate a progress bar writing to w. A zero total
// shows a running counter instead of a bar, for runs with no fixed end.
func NewProgressBar(w io.Writer, total int64) *ProgressBar {
	// Progress bar specific theme customization.
	console.SetColor("Bar", color.New(color.FgGreen, color.Bold))

	bar := pb.New64(total)
	bar.SetWriter(w)
	bar.SetRefreshRate(time.Millisecond * 125)
	if total > 0 {
		bar.SetTemplateString(boundedTemplate)
	} else {
		bar.SetTemplateString(continuousTemplate)
	}

	return &ProgressBar{ProgressBar: bar}
}

// SetCaption sets the caption of the progress bar.
func (p *ProgressBar) SetCaption(caption string) *ProgressBar {
	p.ProgressBar.Set("prefix", caption)
	return p
}

// Tick counts one finished iteration.
func (p *ProgressBar) Tick() {
	p.ProgressBar.Increment()
}
