// Package relay publishes notification log entries to Kafka.
//
// The Publisher tails a NotificationLog from a cursor position, resolves
// each entry to its originating event, and writes one Kafka message per
// entry keyed by aggregate id. The cursor only advances after a successful
// write, so delivery is at-least-once: consumers must tolerate duplicates,
// which they can deduplicate on the carried log position.
package relay
