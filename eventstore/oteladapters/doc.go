// Package oteladapters provides OpenTelemetry implementations of the
// eventstore observability interfaces: ContextualLogger, MetricsCollector
// (including the contextual variant) and TracingCollector.
//
// The eventstore interfaces themselves are dependency-free; this package is
// the plug-and-play binding for deployments that already run OpenTelemetry.
package oteladapters
