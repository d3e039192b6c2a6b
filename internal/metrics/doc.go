// Package metrics counts what the scanner and formatter do.
//
// Components take a Recorder and default to NoopRecorder, so instrumented
// code never checks for nil. The watch command swaps in PrometheusRecorder
// and exposes it with Listen:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	s, err := scanner.New(cfg, scanner.WithRecorder(rec))
//
// Tests inject their own Recorder to assert on counts.
package metrics
