package game

const (
	surpriseDRM = 3
	ambushDRM   = 4
)

// ModifierFor returns the die roll modifier of side under p.
//
// Both sides start from their manual adjustment and the Allied player adds its
// air power DRM. Under Surprise the non-reaction player gets +3. Under Ambush
// the reaction player gets +4, which the rules grant only to the Allied player.
func ModifierFor(side Side, p Params) int {
	drm := 0
	switch side {
	case SideAllied:
		drm = p.AlliedAdjust + p.AirPower.Modifier()
	case SideJapan:
		drm = p.JapanAdjust
	default:
		return 0
	}

	reacting := side == p.Reaction
	switch p.Intel {
	case Intercept:
	case Surprise:
		if !reacting {
			drm += surpriseDRM
		}
	case Ambush:
		if reacting && side == SideAllied {
			drm += ambushDRM
		}
	}
	return drm
}
