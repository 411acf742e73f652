package metrics

import "github.com/medifleet/dispatch/core/factory"

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink builder identified by name.
func RegisterMetricsSink(name string, b factory.Builder[MetricsSink]) error {
	return sinkRegistry.Register(name, b)
}

// NewMetricsSink creates a MetricsSink from the provided configuration.
// Zero configs yield a NopSink, several are combined into a MultiSink.
func NewMetricsSink(cfgs []factory.BackendConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Build(cfgs[0])
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Build(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
