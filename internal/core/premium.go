package core

import "time"

// CheckPremium is the premium gate: the user is eligible iff a premium
// expiration exists and lies strictly after now. On rejection it
// returns a PremiumExpiredError carrying the current expiration and
// plan tag; on success the caller proceeds with the user unchanged.
//
// This is a pure decision function; the only external dependency is
// now, which callers take from a Clock.
func CheckPremium(u User, now time.Time) error {
	if u.IsPremiumActive(now) {
		return nil
	}
	return &PremiumExpiredError{
		PremiumUntil: u.PremiumUntil,
		PlanType:     u.PlanType,
	}
}
