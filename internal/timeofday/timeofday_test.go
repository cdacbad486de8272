package timeofday

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tod, err := Parse("08:30")
	require.NoError(t, err)
	assert.Equal(t, "08:30", tod.String())
	assert.Equal(t, 510, tod.Minutes())

	tod, err = Parse("22:15:45")
	require.NoError(t, err)
	assert.Equal(t, "22:15", tod.String())

	_, err = Parse("25:00")
	assert.Error(t, err)

	_, err = Parse("not a time")
	assert.Error(t, err)
}

func TestOrdering(t *testing.T) {
	in := New(8, 0)
	out := New(17, 30)
	assert.True(t, in.Before(out))
	assert.True(t, out.After(in))
	assert.False(t, in.After(out))
}

func TestOn(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	at := New(9, 45).On(date)
	assert.Equal(t, time.Date(2024, 3, 15, 9, 45, 0, 0, time.UTC), at)
}

func TestScan(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan("14:05:00"))
	assert.Equal(t, "14:05", tod.String())

	require.NoError(t, tod.Scan(time.Date(0, 1, 1, 7, 20, 0, 0, time.UTC)))
	assert.Equal(t, "07:20", tod.String())

	require.NoError(t, tod.Scan(nil))
	assert.True(t, tod.IsZero())

	assert.Error(t, tod.Scan(42))
}

func TestValue(t *testing.T) {
	v, err := New(6, 5).Value()
	require.NoError(t, err)
	assert.Equal(t, "06:05:00", v)

	v, err = TimeOfDay{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSON(t *testing.T) {
	raw, err := json.Marshal(New(18, 0))
	require.NoError(t, err)
	assert.Equal(t, `"18:00"`, string(raw))

	var tod TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"09:30"`), &tod))
	assert.Equal(t, 570, tod.Minutes())

	require.NoError(t, json.Unmarshal([]byte(`""`), &tod))
	assert.True(t, tod.IsZero())
}
