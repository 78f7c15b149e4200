package geometry

import "encoding/json"

// Tier is the distance class of an annotated region.
type Tier int

const (
	// TierFar covers regions smaller than 3% of the image.
	TierFar Tier = iota
	// TierMedium covers regions from 3% up to 8% of the image.
	TierMedium
	// TierNear covers regions of 8% of the image and above.
	TierNear
)

const (
	farLimit    = 0.03
	mediumLimit = 0.08

	// MinThickness is the thinnest stroke any tier may produce.
	MinThickness = 2
)

// Style is the stroke thickness and tick length used for one annotation.
type Style struct {
	Tier      Tier `json:"tier"`
	Thickness int  `json:"thickness"`
	TickLen   int  `json:"tick_len"`
}

// tierTable is ordered by tier; both columns increase monotonically.
var tierTable = [...]Style{
	TierFar:    {Tier: TierFar, Thickness: 2, TickLen: 18},
	TierMedium: {Tier: TierMedium, Thickness: 3, TickLen: 24},
	TierNear:   {Tier: TierNear, Thickness: 4, TickLen: 30},
}

// TierFor classifies a size ratio (see SizeRatio) into a tier.
func TierFor(ratio float64) Tier {
	switch {
	case ratio < farLimit:
		return TierFar
	case ratio < mediumLimit:
		return TierMedium
	default:
		return TierNear
	}
}

// StyleFor returns the stroke style for a tier.
func StyleFor(t Tier) Style {
	if t < TierFar || t > TierNear {
		t = TierFar
	}
	return tierTable[t]
}

// StyleForRect classifies r against a width x height image and returns its style.
func StyleForRect(r Rect, width, height int) Style {
	return StyleFor(TierFor(SizeRatio(r, width, height)))
}

func (t Tier) String() string {
	switch t {
	case TierFar:
		return "far"
	case TierMedium:
		return "medium"
	case TierNear:
		return "near"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the tier by name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
