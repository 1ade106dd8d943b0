package timelock

import "time"

const secondsPerDay = 86400

// Remaining is the time left until a record may be disclosed, decomposed
// for display. Every field is zero once the record has expired.
type Remaining struct {
	Days         int   `json:"days"`
	Hours        int   `json:"hours"`
	Minutes      int   `json:"minutes"`
	TotalSeconds int64 `json:"total_seconds"`
}

// Evaluation is the result of checking a record's expiry instant against a
// single observation of the clock.
type Evaluation struct {
	IsExpired bool
	Remaining Remaining
}

// Evaluate reports whether expiresAt has passed at now and how much time is
// left until it does. It is pure: identical inputs always yield identical
// output, and a negative delta never leaks into the remaining breakdown.
func Evaluate(now, expiresAt time.Time) Evaluation {
	delta := expiresAt.Sub(now)
	if delta <= 0 {
		return Evaluation{IsExpired: true}
	}

	total := int64(delta / time.Second)
	return Evaluation{
		Remaining: Remaining{
			Days:         int(total / secondsPerDay),
			Hours:        int(total % secondsPerDay / 3600),
			Minutes:      int(total % 3600 / 60),
			TotalSeconds: total,
		},
	}
}
