package tabs

import (
	"time"

	"github.com/tabkeep/tabkeepd/internal/domain"
)

// statsInactiveThreshold is the inactivity after which a tab counts as
// "inactive" in the popup stats, independent of the auto-close threshold.
const statsInactiveThreshold = 30 * time.Minute

// Stats summarizes the given open tabs against the tracker's timers.
// Untracked tabs contribute to the total but not to inactivity figures.
func (t *Tracker) Stats(open []domain.Tab) domain.TabStats {
	now := t.now()

	var totalInactive time.Duration
	inactiveTabs := 0

	for _, tab := range open {
		timer, ok := t.Lookup(tab.ID)
		if !ok || tab.Active {
			continue
		}

		inactive := now.Sub(timer.LastActive)
		totalInactive += inactive

		if inactive > statsInactiveThreshold {
			inactiveTabs++
		}
	}

	denom := len(open) - 1
	if denom < 1 {
		denom = 1
	}

	return domain.TabStats{
		TotalTabs:       len(open),
		InactiveTabs:    inactiveTabs,
		AvgInactiveTime: totalInactive / time.Duration(denom),
	}
}
