package matcher

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats describes the work done by one or more passes.
type Stats struct {
	Comparisons int
	Matches     int
	Start       time.Time
}

func NewStats() Stats {
	return Stats{Start: time.Now()}
}

// Add sums the counters and keeps the earlier start time.
func (s Stats) Add(other Stats) Stats {
	s.Comparisons += other.Comparisons
	s.Matches += other.Matches

	if s.Start.IsZero() || (!other.Start.IsZero() && other.Start.Before(s.Start)) {
		s.Start = other.Start
	}

	return s
}

func (s Stats) Matched() bool {
	return s.Matches > 0
}

func (s Stats) Elapsed() time.Duration {
	if s.Start.IsZero() {
		return 0
	}

	return time.Since(s.Start)
}

func (s Stats) String() string {
	return fmt.Sprintf("cmp:%s, match:%s, time:%s μs",
		humanize.Comma(int64(s.Comparisons)),
		humanize.Comma(int64(s.Matches)),
		humanize.Comma(s.Elapsed().Microseconds()),
	)
}
