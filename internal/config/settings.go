package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/spec-kit/servicedesk/internal/domain"
)

const defaultSettingsFile = "configs/servicios.yaml"

// ServiceSettings are the technical-service options an administrator tunes.
// They are injected into the services instead of being looked up globally.
type ServiceSettings struct {
	DefaultWorkStatus      domain.WorkStatus
	DisableStockManagement bool
	SiteURL                string
	CacheTTL               time.Duration
}

// LoadServiceSettings reads the "servicios" section of an optional YAML file.
// SERVICIOS_* environment variables override the file.
func LoadServiceSettings(path string) (ServiceSettings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("servicios.workstatus", int(domain.WorkStatusNone))
	v.SetDefault("servicios.disablestockmanagement", false)
	v.SetDefault("servicios.siteurl", "http://localhost:8080")
	v.SetDefault("servicios.cachettlseconds", 300)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return ServiceSettings{}, fmt.Errorf("read settings %s: %w", path, err)
			}
		}
	}

	status := domain.WorkStatus(v.GetInt("servicios.workstatus"))
	if !status.Valid() {
		return ServiceSettings{}, fmt.Errorf("invalid servicios.workstatus %d", int(status))
	}

	return ServiceSettings{
		DefaultWorkStatus:      status,
		DisableStockManagement: v.GetBool("servicios.disablestockmanagement"),
		SiteURL:                strings.TrimRight(v.GetString("servicios.siteurl"), "/"),
		CacheTTL:               time.Duration(v.GetInt("servicios.cachettlseconds")) * time.Second,
	}, nil
}
