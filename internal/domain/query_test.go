package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_NormalizeQuery(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"iPhone 15 Pro", "iphone 15 pro"},
		{"  Nintendo   Switch  OLED ", "nintendo switch oled"},
		{"LEGO\tStar Wars", "lego star wars"},
		{"AirPods", "airpods"},
	}
	for _, c := range cases {
		got, err := NormalizeQuery(c.in)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func Test_NormalizeQuery_Invalid(t *testing.T) {
	t.Parallel()
	for _, in := range []string{
		"",
		"   ",
		"\t\n",
		"tv\x00remote",
		strings.Repeat("a", MaxQueryLen+1),
	} {
		_, err := NormalizeQuery(in)
		require.ErrorIs(t, err, ErrInvalidQuery, "input %q", in)
	}
}

func Test_NormalizeQuery_Stable(t *testing.T) {
	t.Parallel()
	a, err := NormalizeQuery("Dyson V15 Detect")
	require.NoError(t, err)
	b, err := NormalizeQuery("  dyson  V15   DETECT")
	require.NoError(t, err)
	require.Equal(t, a, b)
}
