package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waterbarons/internal/engine"
)

func TestTrackAddReportsUpwardCrossings(t *testing.T) {
	tr := engine.ImpactTrack{Track: engine.TrackGrey, Level: 4, MaxLevel: 10, Thresholds: map[int]string{6: "x"}}

	assert.False(t, tr.Add(1))
	assert.Equal(t, 5, tr.Level)
	assert.True(t, tr.Add(1))
	assert.Equal(t, 6, tr.Level)
	assert.False(t, tr.Add(2), "already past the threshold")
	assert.False(t, tr.Add(5))
	assert.Equal(t, 10, tr.Level)
	assert.True(t, tr.AtMax())

	tr.Reduce(20)
	assert.Zero(t, tr.Level)
	assert.True(t, tr.Add(6), "crossing from below counts again")
}

func TestThresholdLevelsSorted(t *testing.T) {
	tr := engine.ImpactTrack{Thresholds: map[int]string{9: "c", 3: "a", 6: "b"}}
	assert.Equal(t, []int{3, 6, 9}, tr.ThresholdLevels())
}

func TestParseTrack(t *testing.T) {
	tests := []struct {
		in   string
		want engine.Track
	}{
		{"PINK", engine.TrackPink},
		{"pink", engine.TrackPink},
		{"TrackColor.GREY", engine.TrackGrey},
		{" BLUE ", engine.TrackBlue},
		{"TOX", engine.TrackGreen},
		{"CO₂e", engine.TrackGrey},
		{"co2e", engine.TrackGrey},
		{"μP", engine.TrackPink},
		{"DEP", engine.TrackBlue},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := engine.ParseTrack(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := engine.ParseTrack("PURPLE")
	assert.Error(t, err)
}

func TestTrackText(t *testing.T) {
	b, err := engine.TrackGreen.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "GREEN", string(b))
	assert.Equal(t, "TOX", engine.TrackGreen.Label())

	var tr engine.Track
	require.NoError(t, tr.UnmarshalText([]byte("TrackColor.BLUE")))
	assert.Equal(t, engine.TrackBlue, tr)

	_, err = engine.Track(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Unknown", engine.Track(9).String())
}

func TestImpactProfile(t *testing.T) {
	ip := engine.ImpactProfile{engine.TrackPink: 2, engine.TrackBlue: 3}
	c := ip.Clone()
	c[engine.TrackPink] = 9

	assert.Equal(t, 5, ip.Total())
	assert.Equal(t, 2, ip[engine.TrackPink])
}

func TestPhaseText(t *testing.T) {
	b, err := engine.PhaseThresholdCheck.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ThresholdCheck", string(b))

	var p engine.GamePhase
	require.NoError(t, p.UnmarshalText([]byte("Crowd")))
	assert.Equal(t, engine.PhaseCrowd, p)
	assert.Error(t, p.UnmarshalText([]byte("Lunch")))
}
