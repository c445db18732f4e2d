package resolve

// eliminateCaustics removes folded-under branches from a candidate point
// sequence given in ray order. A fold shows up as a reversal of the
// spatial ordering: a ray crossing its neighbor before the target time.
// The sweep keeps a strictly x-increasing front; at a reversal the branch
// with smaller elevation survives (the most-eroded surface is the one
// physically realized), or the larger when keepUpper inverts the
// polarity.
func eliminateCaustics(pts []point, keepUpper bool) []point {
	if len(pts) < 2 {
		return pts
	}

	wins := func(a, b float64) bool {
		if keepUpper {
			return a > b
		}
		return a < b
	}

	kept := make([]point, 0, len(pts))
	for _, p := range pts {
		if len(kept) == 0 || p.x > kept[len(kept)-1].x {
			kept = append(kept, p)
			continue
		}
		// Reversal: drop folded-over points that the incoming branch
		// beats, then keep the incoming point only if it still extends
		// the front.
		for len(kept) > 0 && kept[len(kept)-1].x >= p.x && wins(p.z, kept[len(kept)-1].z) {
			kept = kept[:len(kept)-1]
		}
		if len(kept) == 0 || p.x > kept[len(kept)-1].x {
			kept = append(kept, p)
		}
	}
	return kept
}
