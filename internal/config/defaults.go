package config

import "time"

const (
	DefaultHTTPPort          = "8080"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultProviderTimeout   = 4 * time.Second
	DefaultAutoFetchInterval = 60 * time.Second
	DefaultDepthLimit        = 100
	DefaultStateKey          = "rubconv:state:v1"
	DefaultPGMaxConns        = 5
	DefaultPGMinConns        = 1
)
