// Package metrics содержит счётчики Prometheus движка лояльности.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PurchasesRecorded считает записанные покупки.
var (
	PurchasesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monyfest_purchases_recorded_total",
		Help: "Total purchase ledger entries recorded",
	})

	// PointsAllocated считает начисленные баллы лояльности.
	PointsAllocated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monyfest_points_allocated_total",
		Help: "Total loyalty points allocated",
	})

	// BoostCredited считает начисленный boost-кэшбэк в пайсах.
	BoostCredited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monyfest_boost_credited_paise_total",
		Help: "Total merchant boost credited, in paise",
	})

	// WebhookEvents считает события платёжного шлюза по исходам.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monyfest_webhook_events_total",
		Help: "Payment gateway webhook events by outcome",
	}, []string{"outcome"})
)
