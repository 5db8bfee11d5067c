package session

import "github.com/niveshpath/client/src/models"

// Decision is the route guard's three-way verdict for a protected view.
type Decision int

const (
	// DecisionWait: restoration is still running; do not decide yet.
	DecisionWait Decision = iota
	// DecisionRedirectLogin: no session; send the user to the login view.
	DecisionRedirectLogin
	// DecisionAllow: render the requested view.
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Authorize decides whether a protected view may render. Pure recomputation
// from the session's published state; the guard holds no state of its own.
func Authorize(loading bool, user *models.User) Decision {
	if loading {
		return DecisionWait
	}
	if user == nil {
		return DecisionRedirectLogin
	}
	return DecisionAllow
}

// Guard binds Authorize to a Manager for callers that hold one.
func (m *Manager) Guard() Decision {
	return Authorize(m.Loading(), m.CurrentUser())
}
