package probe

import "time"

// SendStats counts what a Transmitter has sent.
type SendStats struct {
	Packets int
	Bytes   int64
	Errors  int
	Start   time.Time
	Stop    time.Time
}

func (s SendStats) Elapsed() time.Duration {
	if s.Start.IsZero() {
		return 0
	}
	return s.Stop.Sub(s.Start)
}

// ArrivalStats keeps running totals over arrivals. Inter-arrival figures
// skip the first datagram, whose Diff is measured from program start.
type ArrivalStats struct {
	Packets int
	Bytes   int64
	Last    time.Duration
	MinDiff time.Duration
	MaxDiff time.Duration

	sumDiff   time.Duration
	nDiff     int
	prevDiff  time.Duration
	sumJitter time.Duration
	nJitter   int
}

func (s *ArrivalStats) Add(a Arrival) {
	s.Packets++
	s.Bytes += int64(a.Size)
	s.Last = a.SinceStart
	if s.Packets == 1 {
		return
	}

	d := a.Diff
	if s.nDiff == 0 || d < s.MinDiff {
		s.MinDiff = d
	}
	if d > s.MaxDiff {
		s.MaxDiff = d
	}
	if s.nDiff > 0 {
		delta := d - s.prevDiff
		if delta < 0 {
			delta = -delta
		}
		s.sumJitter += delta
		s.nJitter++
	}
	s.sumDiff += d
	s.nDiff++
	s.prevDiff = d
}

func (s ArrivalStats) MeanDiff() time.Duration {
	if s.nDiff == 0 {
		return 0
	}
	return s.sumDiff / time.Duration(s.nDiff)
}

// Jitter is the mean absolute difference between consecutive inter-arrival
// times.
func (s ArrivalStats) Jitter() time.Duration {
	if s.nJitter == 0 {
		return 0
	}
	return s.sumJitter / time.Duration(s.nJitter)
}
