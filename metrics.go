/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	rostersParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ulvareth_rosters_parsed_total",
			Help: "Rosters that passed validation",
		},
		[]string{"source"}, // "upload", "sample", "api", "cli"
	)

	rostersRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ulvareth_rosters_rejected_total",
			Help: "Rosters refused by schema validation",
		},
		[]string{"source"},
	)

	groupingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ulvareth_groupings_total",
			Help: "Party suggestions computed",
		},
		[]string{"mode"},
	)

	quizSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ulvareth_quiz_submissions_total",
			Help: "Quiz results scored or received",
		},
		[]string{"source"}, // "score", "socket", "post", "import"
	)

	liveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ulvareth_live_sessions",
			Help: "GM sessions currently held in memory",
		},
	)
)

func registerMetrics(cfg *Config, mux *httprouter.Router) {
	mux.Handler("GET", cfg.prefix+"/metrics", promhttp.Handler())
}
