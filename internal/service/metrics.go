package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lomaya",
		Name:      "request_transitions_total",
		Help:      "Requests moved to a new status, by target status.",
	}, []string{"status"})

	membersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lomaya",
		Name:      "members_created_total",
		Help:      "Members created from approved requests.",
	})

	reportTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lomaya",
		Name:      "report_transitions_total",
		Help:      "User task reports moved to a new status, by target status.",
	}, []string{"status"})

	notificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lomaya",
		Name:      "notification_failures_total",
		Help:      "Notifications that could not be delivered.",
	})
)
