package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var updatesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lomaya",
	Subsystem: "bot",
	Name:      "updates_total",
	Help:      "Telegram updates received, by kind (photo, command, text, other).",
}, []string{"kind"})
