package main

import (
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/riskibarqy/matchday-ingest/internal/usecase"
)

// progressBars renders one bar per date over the events of that date.
type progressBars struct {
	out io.Writer

	mu   sync.Mutex
	bars map[string]*pb.ProgressBar
}

func newProgressBars(out io.Writer) *progressBars {
	return &progressBars{out: out, bars: make(map[string]*pb.ProgressBar)}
}

func (p *progressBars) DayStarted(date time.Time, events int) {
	key := date.Format(usecase.DayLayout)

	bar := pb.Full.New(events)
	bar.SetWriter(p.out)
	bar.Set("prefix", key+" ")
	bar.Set(pb.CleanOnFinish, true)

	p.mu.Lock()
	p.bars[key] = bar
	p.mu.Unlock()

	bar.Start()
}

func (p *progressBars) EventFinished(date time.Time, _ usecase.EventResult) {
	if bar := p.lookup(date); bar != nil {
		bar.Increment()
	}
}

func (p *progressBars) DayFinished(summary usecase.DaySummary) {
	key := summary.Date.Format(usecase.DayLayout)

	p.mu.Lock()
	bar := p.bars[key]
	delete(p.bars, key)
	p.mu.Unlock()

	if bar != nil {
		bar.Finish()
	}
}

func (p *progressBars) lookup(date time.Time) *pb.ProgressBar {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bars[date.Format(usecase.DayLayout)]
}
