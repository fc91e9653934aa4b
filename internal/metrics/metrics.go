// Package metrics exposes Prometheus counters for authentication outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthRequests counts gate decisions by outcome: "authorized" or the
	// denial error code.
	AuthRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civicauth",
		Name:      "auth_requests_total",
		Help:      "Authentication gate decisions by outcome.",
	}, []string{"outcome", "transport"})

	// TransparentRefreshes counts access tokens minted through the silent
	// web refresh path.
	TransparentRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "civicauth",
		Name:      "transparent_refreshes_total",
		Help:      "Access tokens minted via transparent cookie refresh.",
	})

	// Logins counts explicit login attempts by result.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civicauth",
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	// SessionsRevoked counts sessions deactivated through logout or revocation.
	SessionsRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "civicauth",
		Name:      "sessions_revoked_total",
		Help:      "Sessions deactivated by logout or revocation.",
	})
)
