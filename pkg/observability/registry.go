package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every reconciler metric and nothing else; no Go runtime
// or process collectors are registered.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// WriteTextfile writes the registry in the node_exporter textfile format.
// The file is written atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
