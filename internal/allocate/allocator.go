// Package allocate assigns canonical 7-digit account codes inside the
// numeric range owned by each account type, avoiding a caller-supplied set of
// already-used codes.
package allocate

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/ledgerlift/ledgerlift/internal/model"
)

// probeIncrements are tried in order: coarse steps first so related accounts
// land on round codes, then finer steps as the range fills up.
var probeIncrements = []int{1000, 100, 10, 1}

const (
	probesPerIncrement = 100
	randomRetries      = 100
	rangeWidth         = 1_000_000
)

// Allocate returns the first unused code for the given type and inserts it
// into used before returning, so callers never observe a decided-but-not-yet
// reserved code. sequenceHint spreads sibling accounts of the same type
// across the range.
//
// After all 400 probes fail the allocator falls back to random codes,
// retrying a bounded number of draws before accepting a residual collision
// risk. Exhaustion is logged since it signals a pathologically dense range.
func Allocate(accountType model.AccountType, sequenceHint int, used map[string]struct{}) string {
	base := accountType.RangeStart()
	if sequenceHint < 0 {
		sequenceHint = 0
	}

	for _, increment := range probeIncrements {
		for i := 0; i < probesPerIncrement; i++ {
			offset := (sequenceHint*increment + i) % rangeWidth
			code := formatCode(base + offset)
			if _, taken := used[code]; !taken {
				used[code] = struct{}{}
				return code
			}
		}
	}

	slog.Warn("code allocation probes exhausted, falling back to random codes",
		"account_type", accountType,
		"sequence_hint", sequenceHint,
		"probes", len(probeIncrements)*probesPerIncrement)

	var code string
	for attempt := 0; attempt < randomRetries; attempt++ {
		code = formatCode(base + rand.Intn(rangeWidth))
		if _, taken := used[code]; !taken {
			break
		}
	}

	used[code] = struct{}{}
	return code
}

func formatCode(code int) string {
	return fmt.Sprintf("%07d", code)
}
