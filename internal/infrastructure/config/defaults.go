package config

import "time"

const (
	DefaultHTTPPort        = "8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
	DefaultCacheMaxEntries = 10000
	// DefaultSources is the demo profile used when SOURCES is unset: four
	// fixed-price retailers that produce a valid consensus out of the box.
	DefaultSources = "amazon=static:19.99;google-shopping=static:20.05;cdiscount=static:21.40;fnac=static:19.95"
)
