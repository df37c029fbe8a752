// Package metrics counts extraction outcomes with Prometheus collectors.
//
// Collectors live in a private registry owned by Recorder rather than the
// global default, so several recorders (tests, repeated batch runs) can
// coexist. The CLI has no HTTP surface; batch runs export the registry to a
// node_exporter textfile instead.
package metrics
