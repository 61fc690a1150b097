package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar      = "APP_NAME"
	folderEnvVar    = "FOLDER"
	baseURLVar      = "API_BASE_URL"
	httpTimeoutVar  = "HTTP_TIMEOUT_SECONDS"
	refreshOn403Var = "REFRESH_ON_FORBIDDEN"
	rootSectionVar  = "ROOT_SECTION_PATH"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Session Client")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the base URL of the protected API
// (e.g., "https://api.example.com/api/v1"). Requests outside this base are
// never touched by the interceptor.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8000/api")
}

func (EnvVars) GetLoginPath() string {
	return GetEnv("LOGIN_PATH", "/login/")
}

func (EnvVars) GetRefreshPath() string {
	return GetEnv("REFRESH_PATH", "/token/refresh/")
}

func (EnvVars) GetProfilePath() string {
	return GetEnv("PROFILE_PATH", "/users/me/")
}

func (EnvVars) GetMenuPath() string {
	return GetEnv("MENU_PATH", "/menu/")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(httpTimeoutVar, "30"))
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// GetRefreshOnForbidden reports whether a 403 from the protected API should be
// treated as an expired credential and trigger a refresh, in addition to 401.
func (EnvVars) GetRefreshOnForbidden() bool {
	return strings.EqualFold(GetEnv(refreshOn403Var, "false"), "true")
}

// GetRootSectionPath is the application root section. The authorization
// matcher holds it to exact equality instead of the prefix rule so that an
// entry for the root never grants blanket access to sibling sections.
func (EnvVars) GetRootSectionPath() string {
	return GetEnv(rootSectionVar, "/dashboard")
}

func (EnvVars) GetLoginRoute() string {
	return GetEnv("LOGIN_ROUTE", "/login")
}

func (EnvVars) GetForbiddenRoute() string {
	return GetEnv("FORBIDDEN_ROUTE", "/403")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
