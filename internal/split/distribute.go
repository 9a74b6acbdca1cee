package split

import "conto/internal/core"

// taxShare returns a participant's portion of the tax, always proportional to
// their share of the subtotal. Zero when there is no tax or no subtotal to be
// proportional against.
func taxShare(participantSubtotal, totalSubtotal, tax float64) float64 {
	if tax == 0 || totalSubtotal == 0 {
		return 0
	}
	return core.Round(tax * participantSubtotal / totalSubtotal)
}

// tipShare returns a participant's portion of the tip. Equal mode divides the
// tip evenly; proportional mode follows the participant's subtotal share and
// falls back to an even split when the subtotal is zero.
func tipShare(participantSubtotal, totalSubtotal, tip float64, mode core.TipMode, participantCount int) float64 {
	if tip == 0 {
		return 0
	}
	if mode == core.TipEqual || totalSubtotal == 0 {
		return core.Round(tip / float64(participantCount))
	}
	return core.Round(tip * participantSubtotal / totalSubtotal)
}
