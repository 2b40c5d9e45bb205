package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry          *prometheus.Registry
	ListingsCreated   prometheus.Counter
	ListingsDeleted   *prometheus.CounterVec // reason: owner | exchange
	ProposalsCreated  prometheus.Counter
	ProposalDecisions *prometheus.CounterVec // status: accepted | rejected
	ProposalsDeleted  prometheus.Counter
	APIErrors         *prometheus.CounterVec // kind
}

// New registers the service counters on a private registry, so several
// instances (tests, for one) never collide.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ListingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "listings_created_total",
			Help: "Total number of ads created.",
		}),
		ListingsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "listings_deleted_total",
			Help: "Total number of ads deleted, by reason.",
		}, []string{"reason"}),
		ProposalsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "proposals_created_total",
			Help: "Total number of exchange proposals created.",
		}),
		ProposalDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "proposal_decisions_total",
			Help: "Total number of decided proposals, by outcome.",
		}, []string{"status"}),
		ProposalsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "proposals_deleted_total",
			Help: "Total number of proposals withdrawn by their sender.",
		}),
		APIErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "api_errors_total",
			Help: "Total number of API errors, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.ListingsCreated,
		m.ListingsDeleted,
		m.ProposalsCreated,
		m.ProposalDecisions,
		m.ProposalsDeleted,
		m.APIErrors,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
