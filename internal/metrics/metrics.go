package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "menutranslator"

// Metrics holds the business counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	translateActions *prometheus.CounterVec
	languageResults  *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	creditsDebited   prometheus.Counter
	creditsToppedUp  prometheus.Counter
	settlements      *prometheus.CounterVec
	checkoutSessions *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		translateActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translate_actions_total",
			Help:      "Translate actions by outcome.",
		}, []string{"outcome"}),
		languageResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translate_language_results_total",
			Help:      "Per-language translation results by status.",
		}, []string{"status"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translation_provider_duration_seconds",
			Help:      "Latency of a single translation provider call.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"status"}),
		creditsDebited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_debited_total",
			Help:      "Credits consumed by translate actions.",
		}),
		creditsToppedUp: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_topped_up_total",
			Help:      "Credits granted by settled payments.",
		}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_settlements_total",
			Help:      "Payment settlement attempts by result.",
		}, []string{"result"}),
		checkoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_total",
			Help:      "Checkout sessions initiated by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.translateActions,
		m.languageResults,
		m.providerLatency,
		m.creditsDebited,
		m.creditsToppedUp,
		m.settlements,
		m.checkoutSessions,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) TranslateAction(outcome string) {
	if m == nil {
		return
	}
	m.translateActions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LanguageResult(status string, seconds float64) {
	if m == nil {
		return
	}
	m.languageResults.WithLabelValues(status).Inc()
	m.providerLatency.WithLabelValues(status).Observe(seconds)
}

func (m *Metrics) CreditsDebited(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.creditsDebited.Add(float64(n))
}

func (m *Metrics) CreditsToppedUp(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.creditsToppedUp.Add(float64(n))
}

func (m *Metrics) Settlement(result string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(result).Inc()
}

func (m *Metrics) CheckoutSession(result string) {
	if m == nil {
		return
	}
	m.checkoutSessions.WithLabelValues(result).Inc()
}
