package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type siteConfig struct {
	BaseUrl   string `json:"base_url"`
	SearchUrl string `json:"search_url"`
}

func TestReadConfigMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "sites.json5"),
		[]byte(`{
			// default endpoints
			base_url: "https://hstream.moe",
			search_url: "https://search.hstream.moe",
		}`),
		0600,
	)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "sites.local.json5"),
		[]byte(`{base_url: "http://localhost:8080"}`),
		0600,
	)
	require.NoError(t, err)

	config, err := ReadConfig[siteConfig](filepath.Join(dir, "sites.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", config.BaseUrl)
	require.Equal(t, "https://search.hstream.moe", config.SearchUrl)
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadConfig[siteConfig](filepath.Join(dir, "sites.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
