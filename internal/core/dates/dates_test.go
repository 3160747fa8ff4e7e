package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Date(t *testing.T) {
	ts := time.Date(2021, time.March, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		locale   string
		zone     string
		expected string
	}{
		{name: "brazilian portuguese", locale: "pt-BR", zone: "UTC", expected: "25 mar 2021"},
		{name: "portuguese falls back to brazilian", locale: "pt", zone: "", expected: "25 mar 2021"},
		{name: "english", locale: "en-US", zone: "UTC", expected: "25 Mar 2021"},
		{name: "unknown locale falls back", locale: "ja", zone: "UTC", expected: "25 mar 2021"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.locale, tt.zone)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.Date(ts))
		})
	}
}

func TestFormatter_DateUsesLocation(t *testing.T) {
	f, err := NewFormatter("pt-BR", "America/Sao_Paulo")
	require.NoError(t, err)

	ts := time.Date(2021, time.December, 1, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, "30 nov 2021", f.Date(ts))
	assert.Equal(t, "23:30", f.Hour(ts))
}

func TestFormatter_OptionalDate(t *testing.T) {
	f := MustFormatter("pt-BR", "UTC")

	assert.Equal(t, "", f.OptionalDate(None()))
	assert.Equal(t, "05 jan 2022", f.OptionalDate(Some(time.Date(2022, time.January, 5, 0, 0, 0, 0, time.UTC))))
}

func TestNewFormatter_Invalid(t *testing.T) {
	_, err := NewFormatter("not a locale!!", "UTC")
	assert.Error(t, err)

	_, err = NewFormatter("pt-BR", "Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestOptionalTime_JSON(t *testing.T) {
	var payload struct {
		First OptionalTime `json:"first"`
		Last  OptionalTime `json:"last"`
		Gone  OptionalTime `json:"gone"`
	}

	err := json.Unmarshal([]byte(`{"first":"2021-03-25T19:25:28+0000","last":null}`), &payload)
	require.NoError(t, err)

	first, ok := payload.First.Get()
	require.True(t, ok)
	assert.Equal(t, 2021, first.Year())
	assert.Equal(t, 19, first.Hour())
	assert.False(t, payload.Last.Valid())
	assert.False(t, payload.Gone.Valid())

	out, err := json.Marshal(payload.Last)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestOptionalTime_Before(t *testing.T) {
	early := Some(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	late := Some(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, early.Before(late))
	assert.False(t, late.Before(early))
	assert.True(t, late.Before(None()))
	assert.False(t, None().Before(early))
}

func TestParse(t *testing.T) {
	o, err := Parse("")
	require.NoError(t, err)
	assert.False(t, o.Valid())

	o, err = Parse("2021-03-25")
	require.NoError(t, err)
	assert.True(t, o.Valid())

	_, err = Parse("yesterday")
	assert.Error(t, err)
}
