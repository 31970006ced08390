package utils

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// NewDeviceID builds a device identifier of the form
// device_<unix-millis>_<9 base36 chars>, matching the format stamped on
// records by earlier releases so devices stay distinguishable across
// upgrades.
func NewDeviceID(now time.Time) string {
	suffix := strconv.FormatUint(rand.Uint64(), 36)
	if len(suffix) > 9 {
		suffix = suffix[:9]
	}
	return "device_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
