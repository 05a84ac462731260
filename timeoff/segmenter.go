package timeoff

// =============================================================================
// REST PERIOD SEGMENTER
// =============================================================================

// Segment returns every maximal run of rest days, in date order. A day
// rests when it is not a plain work day or when it carries leave, so
// single-day periods are included. days must be contiguous and sorted.
func Segment(days []DayRecord) []RestPeriod {
	var periods []RestPeriod
	start := -1
	for i, d := range days {
		if d.IsRest() {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			periods = append(periods, restPeriod(days, start, i-1))
			start = -1
		}
	}
	if start >= 0 {
		periods = append(periods, restPeriod(days, start, len(days)-1))
	}
	return periods
}

func restPeriod(days []DayRecord, from, to int) RestPeriod {
	return RestPeriod{
		Start: days[from].Date,
		End:   days[to].Date,
		Days:  to - from + 1,
	}
}
