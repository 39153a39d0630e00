package domain

import (
	"fmt"
	"math/rand"
	"time"

	"casedesk_backend/platform/staffname"
)

// NewAccountID builds a collision-resistant account identifier without a
// storage round trip: creator initials, millisecond timestamp, and a
// 4-digit random suffix, e.g. "JB-1724493600123-4821".
func NewAccountID(creatorName string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%04d", staffname.Initials(creatorName), now.UnixMilli(), rand.Intn(10000))
}
