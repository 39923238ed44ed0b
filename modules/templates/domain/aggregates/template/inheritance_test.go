package template

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestInheritance(t *testing.T) *Inheritance {
	t.Helper()
	inh, err := NewInheritance(uuid.New(), TypeLeaveType, uuid.New(), uuid.New())
	require.NoError(t, err)
	return inh
}

func TestBand_Boundaries(t *testing.T) {
	tests := []struct {
		level int
		want  CustomizationBand
	}{
		{0, BandNone},
		{1, BandLow},
		{25, BandLow},
		{26, BandMedium},
		{50, BandMedium},
		{51, BandHigh},
		{75, BandHigh},
		{76, BandComplete},
		{100, BandComplete},
	}
	for _, tt := range tests {
		inh := newTestInheritance(t)
		require.NoError(t, inh.SetCustomizationLevel(tt.level))
		require.Equal(t, tt.want, inh.Band(), "level %d", tt.level)
	}
}

func TestSetCustomizationLevel_PromotesMonotonically(t *testing.T) {
	inh := newTestInheritance(t)
	require.Equal(t, InheritanceFull, inh.InheritanceType())

	require.NoError(t, inh.SetCustomizationLevel(10))
	require.Equal(t, InheritancePartial, inh.InheritanceType())

	// Dropping back does not demote.
	require.NoError(t, inh.SetCustomizationLevel(0))
	require.Equal(t, InheritancePartial, inh.InheritanceType())

	require.NoError(t, inh.SetCustomizationLevel(75))
	require.Equal(t, InheritanceOverride, inh.InheritanceType())
	require.False(t, inh.CanAutoSync())

	require.NoError(t, inh.SetCustomizationLevel(0))
	require.Equal(t, InheritanceOverride, inh.InheritanceType())
}

func TestTouchSync_AdvancesVersionKeepsData(t *testing.T) {
	inh := newTestInheritance(t)
	data := map[string]any{"days_per_year": 25.0}
	inh.RecordSync(1, data, nil)

	inh.TouchSync(2)
	require.Equal(t, 2, inh.SyncedVersion())
	require.Equal(t, data, inh.SyncedData())
	require.False(t, inh.LastSyncedAt().IsZero())
}
