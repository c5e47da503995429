// Package metrics exposes the server's operational counters and gauges
// as Prometheus metrics (spec §2.1 ambient stack), grounded on the
// pack's client_golang usage: plain package-level collectors registered
// once, updated from the sim loop and transport layer at the call sites
// that already know the values, never recomputed from scratch here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnDuration observes wall-clock seconds spent running one full
	// turn (5 substeps + laser pass), independent of think-time spent
	// waiting on clients.
	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mechmania",
		Name:      "turn_duration_seconds",
		Help:      "Wall-clock time to run one turn's physics, collision, and laser passes.",
		Buckets:   prometheus.DefBuckets,
	})

	// Collisions counts resolveSelf invocations (spec §4.F), one per
	// direction per overlapping pair.
	Collisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mechmania",
		Name:      "collisions_total",
		Help:      "Total collision reactions resolved, one per direction per overlapping pair.",
	})

	// ActiveTeams tracks how many team connections are currently open
	// (neither disconnected nor severed for a timeout).
	ActiveTeams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mechmania",
		Name:      "active_teams",
		Help:      "Number of team connections currently open.",
	})

	// ThinkTime observes each team's elapsed wall-clock between a
	// broadcast and that team's order packet arriving.
	ThinkTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mechmania",
		Name:      "team_think_time_seconds",
		Help:      "Elapsed wall-clock between broadcasting a world snapshot and a team's orders arriving.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"team"})

	// GameTime mirrors the simulation clock so operators can see match
	// progress without parsing a broadcast.
	GameTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mechmania",
		Name:      "game_time_seconds",
		Help:      "Current simulation game_time.",
	})

	// DroppedSpawns counts Things that could not be inserted because the
	// registry's arena was full (spec §7 resource error), one per
	// silently-dropped Add.
	DroppedSpawns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mechmania",
		Name:      "dropped_spawns_total",
		Help:      "Total Add() calls dropped because the registry arena was full.",
	})
)
