package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSaveAsRoundTrip(t *testing.T) {
	t.Parallel()

	settings := &Settings{}
	settings.Main.Name = "mara-north"
	settings.Engine.PredictionRiskThreshold = 0.3
	settings.Engine.QueryRadiusDeg = 0.05
	settings.Engine.MaxAlertRecipients = 10
	settings.Geofence.Features = []GeoFeature{
		{Type: "village", Name: "Talek", Latitude: -1.4, Longitude: 35.2, RadiusKm: 5},
	}

	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	require.NoError(t, settings.SaveAs(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded := &Settings{}
	require.NoError(t, yaml.Unmarshal(data, loaded))
	assert.Equal(t, "mara-north", loaded.Main.Name)
	assert.InDelta(t, 0.3, loaded.Engine.PredictionRiskThreshold, 1e-9)
	assert.InDelta(t, 0.05, loaded.Engine.QueryRadiusDeg, 1e-9)
	assert.Equal(t, 10, loaded.Engine.MaxAlertRecipients)
	require.Len(t, loaded.Geofence.Features, 1)
	assert.Equal(t, "Talek", loaded.Geofence.Features[0].Name)
}
