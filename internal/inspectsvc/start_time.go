package inspectsvc

import (
	"time"
)

// This serves as an approximate start time for the process. It is reported
// through the Info RPC so that collectors can tell restarts apart.
var startTime = time.Now()

func getStartTime() time.Time {
	return startTime
}
