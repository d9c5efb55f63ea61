package analytics

// Direction selects which end PickExtreme looks for.
type Direction int

const (
	Max Direction = iota
	Min
)

// PickExtreme returns the weekday with the highest (Max) or lowest (Min)
// percentage. On equal percentages the larger total wins, then the earlier
// weekday. Weekdays without observations never qualify.
func PickExtreme(percentages map[Weekday]*int, totals map[Weekday]int, dir Direction) *Weekday {
	var (
		candidate *Weekday
		bestPct   int
		bestCnt   = -1
	)
	for _, w := range Weekdays {
		pct := percentages[w]
		cnt := totals[w]
		if pct == nil || cnt <= 0 {
			continue
		}

		better := candidate == nil
		if !better {
			switch dir {
			case Max:
				better = *pct > bestPct
			default:
				better = *pct < bestPct
			}
			better = better || (*pct == bestPct && cnt > bestCnt)
		}
		if better {
			day := w
			candidate = &day
			bestPct = *pct
			bestCnt = cnt
		}
	}
	return candidate
}
