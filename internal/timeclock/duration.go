package timeclock

import (
	"math"
	"time"
)

// WorkedHours computes the hours e would record if clocked out at clockOut:
// elapsed time minus the single break window, rounded to two decimals.
// An open break is counted up to clockOut. Negative elapsed or net time and
// break windows lying outside the session are computation anomalies.
func WorkedHours(e TimeEntry, clockOut time.Time) (float64, error) {
	raw := clockOut.Sub(e.ClockInTime)
	if raw < 0 {
		return 0, anomaly("clock-out precedes clock-in by %s", -raw)
	}

	var onBreak time.Duration
	switch {
	case e.BreakStartTime == nil && e.BreakEndTime != nil:
		return 0, anomaly("break end recorded without a break start")
	case e.BreakStartTime != nil && e.BreakEndTime == nil:
		start := *e.BreakStartTime
		if start.Before(e.ClockInTime) || clockOut.Before(start) {
			return 0, anomaly("open break starting %s lies outside the session", start.Format(time.RFC3339))
		}
		onBreak = clockOut.Sub(start)
	case e.BreakStartTime != nil:
		start, end := *e.BreakStartTime, *e.BreakEndTime
		if end.Before(start) {
			return 0, anomaly("break ends %s before it starts", start.Sub(end))
		}
		if start.Before(e.ClockInTime) || end.After(clockOut) {
			return 0, anomaly("break window lies outside the session")
		}
		onBreak = end.Sub(start)
	}

	net := raw - onBreak
	if net < 0 {
		return 0, anomaly("net worked time is negative (%s)", net)
	}
	return roundHours(net), nil
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Seconds()/3600*100) / 100
}
