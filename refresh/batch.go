package refresh

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
)

type batchID struct {
	seq       uint64
	gen       uint64
	hours     int
	scheduled bool // started by the timer (or a range change) rather than RefreshNow
}

type batchResult[T any] struct {
	batchID
	data T
	err  error
}

type inflightBatch struct {
	gen    uint64
	cancel context.CancelFunc
}

// run is the coordinator goroutine. It is the only writer of the timer, the
// generation counter and the in-flight table.
func (c *Coordinator[T]) run(ctx context.Context, hours int) {
	var (
		gen      uint64
		seq      uint64
		applied  uint64
		timer    *clock.Timer
		timerC   <-chan time.Time
		inflight = make(map[uint64]inflightBatch)
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		for _, b := range inflight {
			b.cancel()
		}
		c.batches.Wait()
		close(c.done)
	}()

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, timerC = nil, nil
	}

	start := func(scheduled bool) {
		seq++
		id := batchID{seq: seq, gen: gen, hours: hours, scheduled: scheduled}
		bctx, cancel := context.WithCancel(ctx)
		inflight[seq] = inflightBatch{gen: gen, cancel: cancel}

		c.batches.Add(1)
		go c.runBatch(bctx, id)
		c.update(func(s *State[T]) { s.Loading = true })
	}

	c.update(func(s *State[T]) {
		s.Hours = hours
		s.Generation = gen
	})
	start(true)

	for {
		select {
		case <-ctx.Done():
			return

		case h := <-c.hoursCh:
			if h == hours {
				continue
			}
			stopTimer()
			for id, b := range inflight {
				b.cancel()
				delete(inflight, id)
			}
			gen++
			hours = h
			log.Debug().Int("hours", hours).Uint64("generation", gen).Msg("refresh time range changed")
			c.update(func(s *State[T]) {
				s.Hours = hours
				s.Generation = gen
				s.Loading = false
			})
			start(true)

		case <-c.refreshCh:
			start(false)

		case <-timerC:
			timer, timerC = nil, nil
			start(true)

		case res := <-c.results:
			if b, ok := inflight[res.seq]; ok {
				b.cancel()
				delete(inflight, res.seq)
			}
			if res.gen != gen {
				log.Debug().Int("hours", res.hours).Uint64("seq", res.seq).Msg("discarding superseded refresh batch")
				continue
			}
			if res.scheduled {
				stopTimer()
				timer = c.clock.Timer(c.interval)
				timerC = timer.C
			}
			loading := len(inflight) > 0
			if res.seq < applied {
				log.Debug().Uint64("seq", res.seq).Msg("discarding refresh batch older than the applied one")
				c.update(func(s *State[T]) { s.Loading = loading })
				continue
			}
			applied = res.seq
			c.apply(res, loading)
		}
	}
}

func (c *Coordinator[T]) runBatch(ctx context.Context, id batchID) {
	defer c.batches.Done()

	data, err := c.load(ctx, id.hours)
	select {
	case c.results <- batchResult[T]{batchID: id, data: data, err: err}:
	case <-ctx.Done():
	}
}

func (c *Coordinator[T]) apply(res batchResult[T], loading bool) {
	if res.err != nil {
		log.Warn().Err(res.err).Int("hours", res.hours).Msg("refresh batch failed")
	}
	c.update(func(s *State[T]) {
		s.Loading = loading
		if res.err != nil {
			s.Err = res.err
			return
		}
		s.Data = res.data
		s.HasData = true
		s.Err = nil
		s.UpdatedAt = c.clock.Now()
	})
}
