package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableScenarios(t *testing.T) {
	tests := []struct {
		name     string
		open     string
		close    string
		duration int
		booked   []string
		want     []string
	}{
		{"empty day", "09:00", "10:00", 30, nil, []string{"09:00", "09:30"}},
		{"first slot booked", "09:00", "10:00", 30, []string{"09:00"}, []string{"09:30"}},
		{"window shorter than slot", "09:00", "09:20", 30, nil, []string{}},
		{"45 minute grid", "08:00", "12:00", 45, []string{"09:30"}, []string{"08:00", "08:45", "10:15", "11:00"}},
		{"fully booked", "09:00", "10:00", 30, []string{"09:00", "09:30"}, []string{}},
		{"off grid booking ignored", "09:00", "10:00", 30, []string{"09:15"}, []string{"09:00", "09:30"}},
		{"seconds are ignored", "09:00:00", "10:00:00", 20, nil, []string{"09:00", "09:20", "09:40"}},
		{"exact fit", "13:00", "13:45", 45, nil, []string{"13:00"}},
		{"equal open and close", "09:00", "09:00", 15, nil, []string{}},
		{"close before open", "18:00", "09:00", 30, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Available(tt.open, tt.close, tt.duration, tt.booked))
		})
	}
}

func TestAvailableCountMatchesWindow(t *testing.T) {
	windows := []struct {
		open, close string
	}{
		{"00:00", "24:00"},
		{"07:30", "19:10"},
		{"09:00", "17:00"},
		{"10:05", "10:50"},
	}

	for _, w := range windows {
		openM, err := ParseClock(w.open)
		require.NoError(t, err)
		closeM, err := ParseClock(w.close)
		require.NoError(t, err)

		for d := 1; d <= 120; d++ {
			got := Available(w.open, w.close, d, nil)
			require.Len(t, got, (closeM-openM)/d, "window %s-%s duration %d", w.open, w.close, d)
			if len(got) == 0 {
				continue
			}
			assert.Equal(t, FormatClock(openM), got[0])
			for i := 1; i < len(got); i++ {
				assert.Less(t, got[i-1], got[i])
			}
		}
	}
}

func TestAvailableBookedRemovesOnlyThatSlot(t *testing.T) {
	all := Available("09:00", "17:00", 30, nil)
	require.NotEmpty(t, all)

	for i, booked := range all {
		got := Available("09:00", "17:00", 30, []string{booked})
		assert.NotContains(t, got, booked)
		assert.Len(t, got, len(all)-1)

		want := append(append([]string{}, all[:i]...), all[i+1:]...)
		assert.Equal(t, want, got)
	}
}

func TestAvailableDurationLongerThanWindow(t *testing.T) {
	assert.Empty(t, Available("09:00", "10:00", 61, nil))
	assert.Empty(t, Available("09:00", "10:00", 600, []string{"09:00"}))
}

func TestAvailableIsIdempotent(t *testing.T) {
	booked := []string{"10:00", "11:30"}
	first := Available("08:00", "18:00", 30, booked)
	second := Available("08:00", "18:00", 30, booked)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"10:00", "11:30"}, booked)
}

func TestAvailableRejectsBadInput(t *testing.T) {
	assert.Empty(t, Available("9:00", "10:00", 30, nil))
	assert.Empty(t, Available("09:00", "ten", 30, nil))
	assert.Empty(t, Available("09:00", "10:00", 0, nil))
	assert.Empty(t, Available("09:00", "10:00", -15, nil))
	assert.Empty(t, Available("25:00", "26:00", 30, nil))
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("13:45")
	require.NoError(t, err)
	assert.Equal(t, 13*60+45, m)

	m, err = ParseClock("08:05:59")
	require.NoError(t, err)
	assert.Equal(t, 8*60+5, m)

	_, err = ParseClock("08:60")
	assert.Error(t, err)
	_, err = ParseClock("0805")
	assert.Error(t, err)
}

func TestParseClockRejectsNonDigits(t *testing.T) {
	for _, in := range []string{"+9:00", "-1:00", " 9:00", "09:+5", "09:0 ", "09:00:+1", "09:00:5", "09:00:xx", "09:00:00:00"} {
		_, err := ParseClock(in)
		assert.Error(t, err, in)
	}
	assert.Empty(t, Available("+9:00", "10:00", 30, nil))
	assert.Empty(t, Available("09:00", "+10:0", 30, nil))
}
