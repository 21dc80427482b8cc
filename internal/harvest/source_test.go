package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrategyFor(t *testing.T) {
	t.Parallel()

	web, err := strategyFor(URLTypeWebsite)
	require.NoError(t, err)
	require.Equal(t, SourceCrossrefWeb, web.tag)

	social, err := strategyFor(URLTypeSocialProfile)
	require.NoError(t, err)
	require.Equal(t, SourceCrossrefSocial, social.tag)

	_, err = strategyFor(URLType("CARRIER_PIGEON"))
	require.Error(t, err)
}

func TestBrandFilterOnlyAppliesToSocialStrategy(t *testing.T) {
	t.Parallel()

	page := Page{HTML: `<p>noreply@facebookmail.com</p>`}
	target := "https://www.facebook.com/somebistro"

	social, err := strategyFor(URLTypeSocialProfile)
	require.NoError(t, err)
	require.Empty(t, social.extract(page, target))

	// The same literal text through the website strategy is kept: brand
	// exclusion belongs to the social path alone.
	web, err := strategyFor(URLTypeWebsite)
	require.NoError(t, err)
	require.Equal(t, []string{"noreply@facebookmail.com"}, web.extract(page, target))
}

func TestBrandToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want string
	}{
		{"https://www.facebook.com/somebistro", "facebook"},
		{"https://m.facebook.com/somebistro/about", "facebook"},
		{"https://instagram.com/cafe", "instagram"},
		{"http://localhost", "localhost"},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, BrandToken(tc.url), tc.url)
	}
}
