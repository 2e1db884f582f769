package headless

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  $120  ", "$120"},
		{"€350", "350"},
		{"10:05 AM – 2:40 PM", "10:05AM 2:40 PM"},
		{"ITA Airways\noperated by KLM", "ITA Airways/operated by KLM"},
		{"   \n  ", "/"},
		{"2 hr   15 min", "2 hr 15 min"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, CleanText(tt.in), "input %q", tt.in)
	}
}

func TestFieldsOrder(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"prices", "airlines", "times", "durations", "stops"}, Fields())
}

func TestFactoryDefaults(t *testing.T) {
	t.Parallel()

	f := NewFactory(Config{}, nil)
	defer f.Close()
	require.Equal(t, defaultNavigationTimeout, f.cfg.NavigationTimeout)
}
