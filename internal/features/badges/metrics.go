package badges

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	unlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeblooded",
		Subsystem: "badges",
		Name:      "unlocks_total",
		Help:      "Выданные бейджи по редкости.",
	}, []string{"tier"})

	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codeblooded",
		Subsystem: "badges",
		Name:      "evaluations_total",
		Help:      "Проверки условий по результату.",
	}, []string{"result"})

	catalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codeblooded",
		Subsystem: "badges",
		Name:      "catalog_size",
		Help:      "Число бейджей в каталоге.",
	})
)
