package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	RouteConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

// APIConfig describes the protected API the client talks to.
type APIConfig interface {
	GetBaseURL() string
	GetLoginPath() string
	GetRefreshPath() string
	GetProfilePath() string
	GetMenuPath() string
	GetHTTPTimeout() time.Duration
	GetRefreshOnForbidden() bool
}

// RouteConfig describes the navigation surface gated by the guard.
type RouteConfig interface {
	GetRootSectionPath() string
	GetLoginRoute() string
	GetForbiddenRoute() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
