// patterns.go: recurring time-pattern detection over incident histories.
package risk

import (
	"time"

	"github.com/wildguard/wildguard-go/internal/datastore"
)

// Time-pattern tags attached to scored patterns.
const (
	PatternNightActivity    = "night_activity"
	PatternDawnDuskActivity = "dawn_dusk_activity"
	PatternDayActivity      = "day_activity"
	PatternWeekendActivity  = "weekend_activity"
	PatternEscalatingThreat = "escalating_threat"
)

// minPatternOccurrences is the minimum peak bucket size before a histogram
// peak counts as a pattern.
const minPatternOccurrences = 2

// identifyTimePatterns derives recurring time-pattern tags from the fetched
// incident history. Fewer than two incidents never produce a pattern.
func identifyTimePatterns(incidents []datastore.Incident, now time.Time) []string {
	patterns := []string{}

	if len(incidents) < 2 {
		return patterns
	}

	// Hour-of-day histogram
	var hourCounts [24]int
	for i := range incidents {
		hourCounts[incidents[i].ReportedAt.Hour()]++
	}

	maxCount := 0
	for _, count := range hourCounts {
		if count > maxCount {
			maxCount = count
		}
	}

	if maxCount >= minPatternOccurrences {
		seen := map[string]bool{}
		for hour, count := range hourCounts {
			if count != maxCount {
				continue
			}
			tag := hourRangeTag(hour)
			if !seen[tag] {
				seen[tag] = true
				patterns = append(patterns, tag)
			}
		}
	}

	// Day-of-week histogram, looking for weekend peaks
	var dayCounts [7]int
	for i := range incidents {
		dayCounts[int(incidents[i].ReportedAt.Weekday())]++
	}

	maxDayCount := 0
	for _, count := range dayCounts {
		if count > maxDayCount {
			maxDayCount = count
		}
	}

	if maxDayCount >= minPatternOccurrences {
		if dayCounts[time.Saturday] == maxDayCount || dayCounts[time.Sunday] == maxDayCount {
			patterns = append(patterns, PatternWeekendActivity)
		}
	}

	// More than half of all incidents within the last week means the threat
	// is escalating
	recentCount := 0
	for i := range incidents {
		if now.Sub(incidents[i].ReportedAt) <= recentActivityWindow {
			recentCount++
		}
	}
	if recentCount > len(incidents)/2 {
		patterns = append(patterns, PatternEscalatingThreat)
	}

	return patterns
}

// hourRangeTag maps an hour bucket to its activity pattern tag.
func hourRangeTag(hour int) string {
	switch {
	case hour >= 22 || hour <= 5:
		return PatternNightActivity
	case hour <= 8 || hour >= 18:
		return PatternDawnDuskActivity
	default:
		return PatternDayActivity
	}
}
