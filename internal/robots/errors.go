// Package robots implements a per-origin, TTL-cached robots.txt compliance
// check, grounded on the worker's robots checker but keyed by origin instead
// of bare host and bounded by a FIFO eviction policy.
package robots

import "errors"

// ErrRobotsDisallowed names a robots.txt denial for the configured user
// agent. IsAllowed does not return it: it reports a denial as (false, nil),
// and the fetcher then fails that URL with its own fetch.ErrRobotsDisallowed.
var ErrRobotsDisallowed = errors.New("robots: disallowed by robots.txt")

// ErrRobotsFetchError names a robots.txt fetch/parse failure. IsAllowed does
// not return it: such a failure is counted in Stats.FetchErrors, reported via
// OnFetchError, and the origin is cached as allow-all. No run-log warning is
// written for it.
var ErrRobotsFetchError = errors.New("robots: fetch or parse failed, allowing all")
