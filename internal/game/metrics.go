package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soup_game_turns_total",
		Help: "Total number of completed player turns.",
	})

	summarizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soup_game_summarizations_total",
			Help: "Total number of summarization attempts by status.",
		},
		[]string{"status"},
	)

	sessionsInitializedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soup_game_sessions_initialized_total",
		Help: "Total number of game session initializations.",
	})
)
