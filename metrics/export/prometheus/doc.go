// Package prometheus renders the engine's counters in the Prometheus text
// exposition format. It lives outside the root package so hosts that do not
// scrape pay nothing for it.
package prometheus
