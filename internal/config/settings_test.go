package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/domain"
)

func TestLoadServiceSettings_Defaults(t *testing.T) {
	settings, err := LoadServiceSettings(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, domain.WorkStatusNone, settings.DefaultWorkStatus)
	assert.False(t, settings.DisableStockManagement)
	assert.Equal(t, "http://localhost:8080", settings.SiteURL)
	assert.Equal(t, 5*time.Minute, settings.CacheTTL)
}

func TestLoadServiceSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servicios.yaml")
	content := "servicios:\n  workstatus: 1\n  disablestockmanagement: true\n  siteurl: https://erp.example.com/\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	settings, err := LoadServiceSettings(path)

	require.NoError(t, err)
	assert.Equal(t, domain.WorkStatusMakeInvoice, settings.DefaultWorkStatus)
	assert.True(t, settings.DisableStockManagement)
	assert.Equal(t, "https://erp.example.com", settings.SiteURL)
}

func TestLoadServiceSettings_EnvOverride(t *testing.T) {
	t.Setenv("SERVICIOS_DISABLESTOCKMANAGEMENT", "true")
	t.Setenv("SERVICIOS_WORKSTATUS", "3")

	settings, err := LoadServiceSettings("")

	require.NoError(t, err)
	assert.True(t, settings.DisableStockManagement)
	assert.Equal(t, domain.WorkStatusMakeDeliveryNote, settings.DefaultWorkStatus)
}

func TestLoadServiceSettings_RejectsMarkerStatus(t *testing.T) {
	t.Setenv("SERVICIOS_WORKSTATUS", "-1")

	_, err := LoadServiceSettings("")

	assert.Error(t, err)
}
