package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce          sync.Once
	shellTogglesTotal    *prometheus.CounterVec
	shellStoreErrors     *prometheus.CounterVec
	dashboardActions     *prometheus.CounterVec
	datasetCacheRequests *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		shellTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trident",
			Subsystem: "shell",
			Name:      "toggles_total",
			Help:      "Sidebar toggles by resulting state",
		}, []string{"state"})

		shellStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trident",
			Subsystem: "shell",
			Name:      "store_errors_total",
			Help:      "Shell state store failures that fell back to the default state",
		}, []string{"operation"})

		dashboardActions = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trident",
			Subsystem: "dashboard",
			Name:      "actions_total",
			Help:      "Acknowledged dashboard actions",
		}, []string{"dashboard", "action"})

		datasetCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trident",
			Subsystem: "dashboard",
			Name:      "dataset_cache_requests_total",
			Help:      "Dataset cache lookups by result",
		}, []string{"result"})
	})
}

func stateLabel(collapsed bool) string {
	if collapsed {
		return "collapsed"
	}
	return "expanded"
}
