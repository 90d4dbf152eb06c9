package trends

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Insights summarizes a monthly series: where the peaks were, which way the
// activity moved and how evenly it was spread
type Insights struct {
	PeakMonth         string   `json:"peak_month,omitempty"`
	QuietMonth        string   `json:"quiet_month,omitempty"`
	TrendDirection    string   `json:"trend_direction"`
	TotalActiveMonths int      `json:"total_active_months"`
	ConsistencyScore  float64  `json:"consistency_score"`
	Insights          []string `json:"insights"`
}

// BuildInsights analyzes a month-ascending series. Below two months there is
// no trend to speak of and the result is nil
func BuildInsights(months []MonthlyTrend) *Insights {
	if len(months) < 2 {
		return nil
	}

	totals := make([]float64, len(months))
	for i, m := range months {
		totals[i] = float64(m.Total())
	}

	peak, quiet := "", ""
	peakAct, quietAct := 0, 0
	active := 0
	for _, m := range months {
		act := m.Total()
		if act > peakAct {
			peak, peakAct = m.Month, act
		}
		if act > 0 {
			active++
			if quiet == "" || act < quietAct {
				quiet, quietAct = m.Month, act
			}
		}
	}

	direction := trendDirection(totals)
	consistency := consistencyScore(totals)

	return &Insights{
		PeakMonth:         peak,
		QuietMonth:        quiet,
		TrendDirection:    direction,
		TotalActiveMonths: active,
		ConsistencyScore:  consistency,
		Insights:          insightLines(months, peak, peakAct, quiet, quietAct, direction, consistency),
	}
}

// trendDirection compares the mean of the early half against the recent half
func trendDirection(totals []float64) string {
	if len(totals) < trendMinimumMonths {
		return DirectionStable
	}
	half := len(totals) / 2
	earlyAvg, _ := stats.Mean(totals[:half])
	recentAvg, _ := stats.Mean(totals[half:])

	switch {
	case recentAvg > earlyAvg*increasingMultiplier:
		return DirectionIncreasing
	case recentAvg < earlyAvg*decreasingMultiplier:
		return DirectionDecreasing
	default:
		return DirectionStable
	}
}

// consistencyScore maps the coefficient of variation over active months onto
// 0..1, where 1 is a perfectly even rhythm
func consistencyScore(totals []float64) float64 {
	activeMonths := make([]float64, 0, len(totals))
	for _, t := range totals {
		if t > 0 {
			activeMonths = append(activeMonths, t)
		}
	}
	if len(activeMonths) < 2 {
		return 0
	}

	mean, _ := stats.Mean(activeMonths)
	sd, _ := stats.StandardDeviationPopulation(activeMonths)

	cv := 1.0
	if mean > 0 {
		cv = sd / mean
	}
	return math.Max(0, 1-math.Min(cv, 1))
}

func insightLines(months []MonthlyTrend, peak string, peakAct int, quiet string, quietAct int, direction string, consistency float64) []string {
	var lines []string

	if peak != "" {
		lines = append(lines, fmt.Sprintf("%s was the most active month (%d activities)", peak, peakAct))
	}
	if quiet != "" && quiet != peak {
		lines = append(lines, fmt.Sprintf("%s was comparatively quiet (%d activities)", quiet, quietAct))
	}

	switch direction {
	case DirectionIncreasing:
		lines = append(lines, "Activity trended upward over the window")
	case DirectionDecreasing:
		lines = append(lines, "Recent months were quieter than the earlier ones")
	default:
		lines = append(lines, "Activity held at a steady level")
	}

	switch {
	case consistency > veryConsistentScore:
		lines = append(lines, fmt.Sprintf("Very consistent activity pattern (consistency %.1f%%)", consistency*100))
	case consistency < inconsistentScore:
		lines = append(lines, fmt.Sprintf("Activity varied a lot between months (consistency %.1f%%); a steadier rhythm spreads the load", consistency*100))
	}

	if month, n := peakBy(months, func(m MonthlyTrend) int { return m.Commits }); n > 0 {
		lines = append(lines, fmt.Sprintf("Commits peaked in %s (%d)", month, n))
	}
	if month, n := peakBy(months, func(m MonthlyTrend) int { return m.PullRequests }); n >= moderatePulls {
		lines = append(lines, fmt.Sprintf("Pull request activity peaked in %s (%d)", month, n))
	}
	return lines
}

// peakBy finds the first month with the highest count for one activity kind
func peakBy(months []MonthlyTrend, count func(MonthlyTrend) int) (string, int) {
	month, best := "", 0
	for _, m := range months {
		if n := count(m); n > best {
			month, best = m.Month, n
		}
	}
	return month, best
}
