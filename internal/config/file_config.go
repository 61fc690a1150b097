package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileValues are the settings a YAML config file may override. Absent fields
// keep the environment-variable defaults.
type FileValues struct {
	AppName            string `yaml:"app_name"`
	DataFolder         string `yaml:"data_folder"`
	BaseURL            string `yaml:"base_url"`
	HTTPTimeoutSeconds int    `yaml:"http_timeout_seconds"`
	RefreshOnForbidden *bool  `yaml:"refresh_on_forbidden"`
	RootSectionPath    string `yaml:"root_section_path"`
	LoginRoute         string `yaml:"login_route"`
	ForbiddenRoute     string `yaml:"forbidden_route"`
}

type fileConfig struct {
	EnvVars
	values FileValues
}

var _ Config = fileConfig{}

// NewFromFile layers a YAML file over the environment defaults. A missing
// file is not an error; the defaults apply unchanged.
func NewFromFile(path string) (Config, error) {
	cfg := fileConfig{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[config.NewFromFile] read config file")
	}

	if err := yaml.Unmarshal(data, &cfg.values); err != nil {
		return nil, errors.Wrap(err, "[config.NewFromFile] parse config file")
	}

	return cfg, nil
}

func (c fileConfig) GetAppName() string {
	if c.values.AppName != "" {
		return c.values.AppName
	}
	return c.EnvVars.GetAppName()
}

func (c fileConfig) GetDataFolder() string {
	if c.values.DataFolder != "" {
		return c.values.DataFolder
	}
	return c.EnvVars.GetDataFolder()
}

func (c fileConfig) GetBaseURL() string {
	if c.values.BaseURL != "" {
		return c.values.BaseURL
	}
	return c.EnvVars.GetBaseURL()
}

func (c fileConfig) GetHTTPTimeout() time.Duration {
	if c.values.HTTPTimeoutSeconds > 0 {
		return time.Duration(c.values.HTTPTimeoutSeconds) * time.Second
	}
	return c.EnvVars.GetHTTPTimeout()
}

func (c fileConfig) GetRefreshOnForbidden() bool {
	if c.values.RefreshOnForbidden != nil {
		return *c.values.RefreshOnForbidden
	}
	return c.EnvVars.GetRefreshOnForbidden()
}

func (c fileConfig) GetRootSectionPath() string {
	if c.values.RootSectionPath != "" {
		return c.values.RootSectionPath
	}
	return c.EnvVars.GetRootSectionPath()
}

func (c fileConfig) GetLoginRoute() string {
	if c.values.LoginRoute != "" {
		return c.values.LoginRoute
	}
	return c.EnvVars.GetLoginRoute()
}

func (c fileConfig) GetForbiddenRoute() string {
	if c.values.ForbiddenRoute != "" {
		return c.values.ForbiddenRoute
	}
	return c.EnvVars.GetForbiddenRoute()
}
