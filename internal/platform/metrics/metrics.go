package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the listify service. Counters track the
// domain events operators care about; the share resolve counter is the load
// signal for public share links.
type Metrics struct {
	UsersRegistered    prometheus.Counter
	LoginFailures      prometheus.Counter
	ListsCreated       prometheus.Counter
	ItemsCreated       prometheus.Counter
	ShareLinksEnabled  prometheus.Counter
	ShareLinksRevoked  prometheus.Counter
	SharedListResolves prometheus.Counter
}

// New creates a Metrics instance with all service metrics registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listify_users_registered_total",
			Help: "Total number of user registrations",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listify_login_failures_total",
			Help: "Total number of failed login attempts",
		}),
		ListsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listify_lists_created_total",
			Help: "Total number of lists created",
		}),
		ItemsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listify_items_created_total",
			Help: "Total number of items created",
		}),
		ShareLinksEnabled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listify_share_links_enabled_total",
			Help: "Total number of share links enabled",
		}),
		ShareLinksRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listify_share_links_revoked_total",
			Help: "Total number of share links revoked",
		}),
		SharedListResolves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "listify_shared_list_resolves_total",
			Help: "Total number of shared list fetches by token",
		}),
	}
}
