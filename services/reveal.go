package services

import (
	"time"

	"github.com/cppla/gardennotes/utils"
)

// RevealReached reports whether the day-key of now in loc is at or after
// threshold. Day-keys are zero padded so string order is calendar order.
func RevealReached(now time.Time, loc *time.Location, threshold string) bool {
	return utils.DateKey(now, loc) >= threshold
}
