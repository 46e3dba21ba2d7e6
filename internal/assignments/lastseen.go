package assignments

import "time"

// LastSeenIndex maps entities to their latest known assignment. It satisfies
// fairness.LastSeenIndex. When both keys are known the later date wins.
type LastSeenIndex struct {
	byID   map[string]int64
	byName map[string]int64
}

func (i *LastSeenIndex) LastSeen(entityID, normalizedName string) (time.Time, bool) {
	var latest int64
	if entityID != "" {
		latest = i.byID[entityID]
	}
	if ts := i.byName[normalizedName]; ts > latest {
		latest = ts
	}
	if latest == 0 {
		return time.Time{}, false
	}
	return time.UnixMicro(latest).UTC(), true
}

// Len returns the number of distinct keys in the index.
func (i *LastSeenIndex) Len() int {
	return len(i.byID) + len(i.byName)
}
