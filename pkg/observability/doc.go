/*
Package observability turns engine lifecycle hooks into metrics and logs.

Metrics counts behavior entries and leaves, routed commands and dropped
inbound messages with prometheus; LoggingHooks writes the same events to a
structured logger. Both return domain.LifecycleHooks and can be combined with
LifecycleHooks.Merge.
*/
package observability
