package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	authLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	authRegistrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Registration attempts by outcome.",
		},
		[]string{"outcome"},
	)

	authProfilesProvisioned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_profiles_provisioned_total",
			Help: "Domain profiles lazily created on first session.",
		},
	)
)

func init() { register(authLogins, authRegistrations, authProfilesProvisioned) }

func IncLogin(ok bool)        { authLogins.WithLabelValues(outcome(ok)).Inc() }
func IncRegistration(ok bool) { authRegistrations.WithLabelValues(outcome(ok)).Inc() }
func IncProfileProvisioned()  { authProfilesProvisioned.Inc() }

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
