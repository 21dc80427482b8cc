package headless

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAboutURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"root profile", "https://facebook.com/somebistro", "https://facebook.com/somebistro/about"},
		{"trailing slash", "https://facebook.com/somebistro/", "https://facebook.com/somebistro/about"},
		{"already about", "https://facebook.com/somebistro/about", "https://facebook.com/somebistro/about"},
		{"about with query", "https://facebook.com/somebistro/about?tab=contact", "https://facebook.com/somebistro/about?tab=contact"},
		{"surrounding whitespace", "  https://facebook.com/somebistro  ", "https://facebook.com/somebistro/about"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, AboutURL(tc.in))
		})
	}
}

func TestAboutURL_Idempotent(t *testing.T) {
	t.Parallel()

	once := AboutURL("https://facebook.com/somebistro")
	twice := AboutURL(once)
	require.Equal(t, once, twice)
	require.Equal(t, 1, strings.Count(twice, "/about"))
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}.withDefaults()
	require.Equal(t, 8*time.Second, cfg.NavTimeout)
	require.Equal(t, 1500*time.Millisecond, cfg.Settle)
	require.Equal(t, 2500*time.Millisecond, cfg.SocialSettle)

	// A custom settle longer than the social default pulls the social
	// settle up with it rather than letting it fall behind.
	cfg = Config{Settle: 4 * time.Second}.withDefaults()
	require.Equal(t, 4*time.Second, cfg.SocialSettle)
}

func TestBlockedPatternsSpareRenderableResources(t *testing.T) {
	t.Parallel()

	for _, pattern := range blockedResourcePatterns {
		require.False(t, strings.HasSuffix(pattern, ".js"), pattern)
		require.False(t, strings.HasSuffix(pattern, ".html"), pattern)
		require.False(t, strings.HasSuffix(pattern, ".json"), pattern)
	}
}
