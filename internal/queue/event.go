// Package queue defines the audit events exchanged over the message broker
// and the background consumer that records them.
package queue

// AuditEvent is published for the portal's notable actions (registrations,
// logins, equipment changes, reservations). It carries enough context for
// downstream consumers to log or alert without querying the database.
type AuditEvent struct {
	Kind       string `json:"kind"`
	UserID     uint64 `json:"user_id"`
	Username   string `json:"username"`
	Detail     string `json:"detail"`
	IP         string `json:"ip"`
	UserAgent  string `json:"user_agent"`
	OccurredAt string `json:"occurred_at"`
}
