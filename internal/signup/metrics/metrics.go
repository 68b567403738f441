// Package metrics exposes prometheus collectors for the signup pipeline.
// All recording methods are safe on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hubsignup"

// Signup outcomes.
const (
	SignupCreated       = "created"
	SignupInvalidInvite = "invalid_invite"
	SignupValidation    = "validation"
	SignupAuthCreate    = "auth_create_failed"
	SignupConflict      = "conflict"
	SignupRolledBack    = "rolled_back"
	SignupRollbackFail  = "rollback_failed"
)

// Consume results.
const (
	ConsumeOK       = "ok"
	ConsumeConflict = "conflict"
	ConsumeExpired  = "expired"
)

// Subscription grant results.
const (
	GrantAssigned   = "assigned"
	GrantExisting   = "existing"
	GrantNoPlan     = "no_plan"
	GrantIneligible = "ineligible"
)

type Metrics struct {
	signups        *prometheus.CounterVec
	signupDuration prometheus.Histogram
	invitesIssued  *prometheus.CounterVec
	inviteConsumes *prometheus.CounterVec
	rollbacks      *prometheus.CounterVec
	grants         *prometheus.CounterVec
	roleChanges    *prometheus.CounterVec
	reconciled     *prometheus.CounterVec
	expired        prometheus.Counter
}

// New builds the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Signup attempts by outcome.",
		}, []string{"outcome"}),
		signupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "signup_duration_seconds",
			Help:      "Wall time of a signup saga.",
			Buckets:   prometheus.DefBuckets,
		}),
		invitesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invites_issued_total",
			Help:      "Invite codes issued by account type.",
		}, []string{"account_type"}),
		inviteConsumes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invite_consumes_total",
			Help:      "Invite consume attempts by result.",
		}, []string{"result"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signup_rollbacks_total",
			Help:      "Signup compensations by result.",
		}, []string{"result"}),
		grants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_grants_total",
			Help:      "Default plan grant decisions by result.",
		}, []string{"result"}),
		roleChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_changes_total",
			Help:      "Role mutations by action and whether a row changed.",
		}, []string{"action", "changed"}),
		reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_reconciliations_total",
			Help:      "Stale saga reconciliation attempts by result.",
		}, []string{"result"}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_expired_total",
			Help:      "Subscriptions flipped to expired by housekeeping.",
		}),
	}

	reg.MustRegister(
		m.signups,
		m.signupDuration,
		m.invitesIssued,
		m.inviteConsumes,
		m.rollbacks,
		m.grants,
		m.roleChanges,
		m.reconciled,
		m.expired,
	)
	return m
}

func (m *Metrics) Signup(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(outcome).Inc()
	m.signupDuration.Observe(took.Seconds())
}

func (m *Metrics) InviteIssued(accountType string) {
	if m == nil {
		return
	}
	m.invitesIssued.WithLabelValues(accountType).Inc()
}

func (m *Metrics) InviteConsumed(result string) {
	if m == nil {
		return
	}
	m.inviteConsumes.WithLabelValues(result).Inc()
}

func (m *Metrics) Rollback(ok bool) {
	if m == nil {
		return
	}
	m.rollbacks.WithLabelValues(okLabel(ok)).Inc()
}

func (m *Metrics) SubscriptionGrant(result string) {
	if m == nil {
		return
	}
	m.grants.WithLabelValues(result).Inc()
}

func (m *Metrics) RoleChange(action string, changed bool) {
	if m == nil {
		return
	}
	if changed {
		m.roleChanges.WithLabelValues(action, "true").Inc()
		return
	}
	m.roleChanges.WithLabelValues(action, "false").Inc()
}

func (m *Metrics) SagaReconciled(ok bool) {
	if m == nil {
		return
	}
	m.reconciled.WithLabelValues(okLabel(ok)).Inc()
}

func (m *Metrics) SubscriptionsExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.expired.Add(float64(n))
}

func okLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
