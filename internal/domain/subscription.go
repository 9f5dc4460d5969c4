package domain

import "time"

// Subscription state constants. Transitions are strictly sequential per
// session: no overlapping subscribe/unsubscribe operations.
const (
	SubscriptionStateUnsupported   = "unsupported"
	SubscriptionStateNotSubscribed = "not_subscribed"
	SubscriptionStatePending       = "pending"
	SubscriptionStateSubscribed    = "subscribed"
)

// Subscription tracks a session's push-notification registration.
type Subscription struct {
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	Handle    string    `json:"handle,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidStates returns the set of valid subscription states.
func ValidStates() []string {
	return []string{
		SubscriptionStateUnsupported,
		SubscriptionStateNotSubscribed,
		SubscriptionStatePending,
		SubscriptionStateSubscribed,
	}
}

// IsValidState checks whether the given state string is a valid subscription state.
func IsValidState(state string) bool {
	for _, s := range ValidStates() {
		if s == state {
			return true
		}
	}
	return false
}
