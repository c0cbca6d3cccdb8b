package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "soup_registrations_total",
	Help: "Total number of successful user registrations.",
})
