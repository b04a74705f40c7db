package threat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wildguard/wildguard-go/internal/datastore"
)

func TestExtractOpticalTrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		labels         []string
		rapid          bool
		wantIndicators IndicatorSet
		wantConfidence float64
	}{
		{
			name:           "single person",
			labels:         []string{"person"},
			wantIndicators: IndicatorSet{HumanPresence: true},
			wantConfidence: 0.4,
		},
		{
			name:   "group with vehicle",
			labels: []string{"person", "multiple_persons", "vehicle"},
			wantIndicators: IndicatorSet{
				HumanPresence:   true,
				MultiplePersons: true,
				VehicleMovement: true,
			},
			wantConfidence: 1.2,
		},
		{
			name:           "weapon raises confidence without an indicator",
			labels:         []string{"weapon"},
			wantIndicators: IndicatorSet{},
			wantConfidence: 0.8,
		},
		{
			name:           "night equipment",
			labels:         []string{"person", "night_vision"},
			wantIndicators: IndicatorSet{HumanPresence: true, NightVision: true},
			wantConfidence: 0.7,
		},
		{
			name:           "rapid succession adds movement confidence",
			labels:         []string{"person"},
			rapid:          true,
			wantIndicators: IndicatorSet{HumanPresence: true},
			wantConfidence: 0.6,
		},
		{
			name:           "multiple persons without a person label is ignored",
			labels:         []string{"multiple_persons"},
			wantIndicators: IndicatorSet{},
			wantConfidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := &Reading{
				SensorID: "cam-1",
				Category: datastore.SensorOpticalTrap,
				Value:    Payload{Labels: tt.labels},
				Metadata: Metadata{RapidSuccession: tt.rapid},
			}
			indicators, confidence, description := Extract(r)
			assert.Equal(t, tt.wantIndicators, indicators)
			assert.InDelta(t, tt.wantConfidence, confidence, 1e-9)
			assert.Contains(t, description, "Camera activation detected")
		})
	}
}

func TestExtractAcoustic(t *testing.T) {
	t.Parallel()

	t.Run("gunshot with high intensity", func(t *testing.T) {
		t.Parallel()
		r := &Reading{
			Category: datastore.SensorAcoustic,
			Value:    Payload{Labels: []string{"gunshot"}, Intensity: 95},
		}
		indicators, confidence, description := Extract(r)
		assert.True(t, indicators.Gunshot)
		assert.InDelta(t, 1.1, confidence, 1e-9)
		assert.Contains(t, description, "GUNSHOT DETECTED")
		assert.Contains(t, description, "High intensity sound")
	})

	t.Run("chainsaw", func(t *testing.T) {
		t.Parallel()
		r := &Reading{
			Category: datastore.SensorAcoustic,
			Value:    Payload{Labels: []string{"chainsaw"}},
		}
		indicators, confidence, _ := Extract(r)
		assert.True(t, indicators.Chainsaw)
		assert.InDelta(t, 0.7, confidence, 1e-9)
	})

	t.Run("voices with vehicle and distress", func(t *testing.T) {
		t.Parallel()
		r := &Reading{
			Category: datastore.SensorAcoustic,
			Value:    Payload{Labels: []string{"human_voices", "vehicle_engine", "animal_distress"}},
		}
		indicators, confidence, _ := Extract(r)
		assert.True(t, indicators.HumanPresence)
		assert.True(t, indicators.VehicleMovement)
		assert.True(t, indicators.AnimalDistress)
		assert.InDelta(t, 1.5, confidence, 1e-9)
	})
}

func TestExtractMotion(t *testing.T) {
	t.Parallel()

	noon := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lateNight := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)

	t.Run("human pattern at noon", func(t *testing.T) {
		t.Parallel()
		r := &Reading{
			Category:   datastore.SensorMotion,
			Value:      Payload{MotionPattern: "human_walking"},
			CapturedAt: noon,
		}
		indicators, confidence, _ := Extract(r)
		assert.True(t, indicators.HumanPresence)
		assert.InDelta(t, 0.5, confidence, 1e-9)
	})

	t.Run("late night bonus", func(t *testing.T) {
		t.Parallel()
		r := &Reading{
			Category:   datastore.SensorMotion,
			Value:      Payload{MotionPattern: "vehicle_movement"},
			CapturedAt: lateNight,
		}
		indicators, confidence, description := Extract(r)
		assert.True(t, indicators.VehicleMovement)
		assert.InDelta(t, 0.9, confidence, 1e-9)
		assert.Contains(t, description, "Late night activity")
	})

	t.Run("unrecognized pattern at night still scores the hour", func(t *testing.T) {
		t.Parallel()
		r := &Reading{
			Category:   datastore.SensorMotion,
			Value:      Payload{MotionPattern: "wind"},
			CapturedAt: lateNight,
		}
		indicators, confidence, _ := Extract(r)
		assert.False(t, indicators.Any())
		assert.InDelta(t, 0.3, confidence, 1e-9)
	})
}

func TestExtractCollarTelemetry(t *testing.T) {
	t.Parallel()

	r := &Reading{
		Category: datastore.SensorCollarTelemetry,
		Value: Payload{
			Behaviors:   []string{"panic_movement", "herd_scattering"},
			SpeedChange: 620,
		},
	}
	indicators, confidence, description := Extract(r)
	assert.True(t, indicators.AnimalDistress)
	assert.InDelta(t, 1.8, confidence, 1e-9)
	assert.Contains(t, description, "panic/flight behavior")
	assert.Contains(t, description, "Rapid animal movement")
}

func TestExtractUnknownCategory(t *testing.T) {
	t.Parallel()

	indicators, confidence, description := Extract(&Reading{Category: "seismic"})
	assert.False(t, indicators.Any())
	assert.Zero(t, confidence)
	assert.Equal(t, "Activity detected", description)
}

func TestExtractWeather(t *testing.T) {
	t.Parallel()

	indicators, confidence, description := Extract(&Reading{Category: datastore.SensorWeather})
	assert.False(t, indicators.Any())
	assert.Zero(t, confidence)
	assert.Equal(t, "Environmental reading", description)
}
