package metrics

import (
	"github.com/pmarg/reseat/core/logger"
	coremetrics "github.com/pmarg/reseat/core/metrics"
)

// NewFromConfig assembles the configured sinks. Zero enabled sinks yields a
// NopSink, one is returned directly, several are fanned out through a
// MultiSink.
func NewFromConfig(cfg coremetrics.Config, log logger.Logger) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		sink, err := NewPromSink(nil)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg, log))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
