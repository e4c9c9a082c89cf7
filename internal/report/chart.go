package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kestrelworks/chatsift/internal/pipeline"
)

// barWidth is the widest bar in the ASCII charts.
const barWidth = 40

// WriteActivityChart renders the temporal histogram as ASCII bar
// charts: messages by hour of day and by weekday.
func WriteActivityChart(w io.Writer, res *pipeline.Result) error {
	writeTitle(w, "ACTIVITY CHART")

	p := res.Temporal
	if p == nil {
		fmt.Fprintln(w, "temporal analysis disabled for this run")
		return nil
	}
	if p.Start.IsZero() {
		fmt.Fprintln(w, "no timestamped messages in corpus")
		return nil
	}

	var byHour [24]int
	var byDay [7]int
	maxHour, maxDay := 0, 0
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			n := p.Histogram[d][h]
			byHour[h] += n
			byDay[d] += n
		}
	}
	for _, n := range byHour {
		if n > maxHour {
			maxHour = n
		}
	}
	for _, n := range byDay {
		if n > maxDay {
			maxDay = n
		}
	}

	fmt.Fprintln(w, "Messages by hour (UTC):")
	for h := 0; h < 24; h++ {
		fmt.Fprintf(w, "  %02d:00 %s %d\n", h, bar(byHour[h], maxHour), byHour[h])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Messages by weekday:")
	for d := 0; d < 7; d++ {
		name := time.Weekday(d).String()
		fmt.Fprintf(w, "  %-9s %s %d\n", name, bar(byDay[d], maxDay), byDay[d])
	}
	return nil
}

func bar(n, peak int) string {
	if peak == 0 || n == 0 {
		return ""
	}
	width := n * barWidth / peak
	if width == 0 {
		width = 1
	}
	return strings.Repeat("#", width)
}
