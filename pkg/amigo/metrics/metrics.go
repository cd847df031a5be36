// Package metrics exposes the server's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GroupsCreated counts groups created since process start.
	GroupsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amigo_groups_created_total",
		Help: "Number of gift exchange groups created.",
	})

	// ParticipantsJoined counts participants enrolled, hosts included.
	ParticipantsJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amigo_participants_joined_total",
		Help: "Number of participants enrolled across all groups.",
	})

	// AssignmentsGenerated counts successful assignment generations.
	AssignmentsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amigo_assignments_generated_total",
		Help: "Number of successful assignment generations.",
	})

	// AssignmentRetriesExhausted counts generations that failed after the
	// retry budget.
	AssignmentRetriesExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amigo_assignment_retries_exhausted_total",
		Help: "Number of assignment generations that exhausted their retries.",
	})
)
