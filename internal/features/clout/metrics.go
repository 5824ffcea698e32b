package clout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	awardsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeblooded",
		Subsystem: "clout",
		Name:      "awards_total",
		Help:      "Начисления клаута по типу действия.",
	}, []string{"action_type"})

	pointsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codeblooded",
		Subsystem: "clout",
		Name:      "points_total",
		Help:      "Сумма начисленного клаута.",
	})

	blockedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeblooded",
		Subsystem: "clout",
		Name:      "blocked_total",
		Help:      "Отклонённые начисления по причине.",
	}, []string{"reason"})

	decayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codeblooded",
		Subsystem: "clout",
		Name:      "decayed_profiles_total",
		Help:      "Профили, к которым применено затухание.",
	})
)
