package ambient

import "time"

// throughput counts frames over one reporting interval.
type throughput struct {
	sent    int
	dropped int
	start   time.Time
}

type throughputReport struct {
	sent    int
	dropped int
	elapsed time.Duration
}

// observe reports and restarts the interval once every has passed since it
// started. A non-positive every disables reporting.
func (t *throughput) observe(now time.Time, every time.Duration) (throughputReport, bool) {
	if every <= 0 {
		return throughputReport{}, false
	}
	elapsed := now.Sub(t.start)
	if elapsed < every {
		return throughputReport{}, false
	}
	r := throughputReport{sent: t.sent, dropped: t.dropped, elapsed: elapsed}
	*t = throughput{start: now}
	return r, true
}
