package builder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "https://example.com/about", want: "https://example.com/about"},
		{name: "trailing slash stripped", in: "https://example.com/about/", want: "https://example.com/about"},
		{name: "root slash kept", in: "https://example.com/", want: "https://example.com/"},
		{name: "empty path becomes root", in: "https://example.com", want: "https://example.com/"},
		{name: "host lowercased", in: "https://Example.COM/About", want: "https://example.com/About"},
		{name: "fragment stripped", in: "https://example.com/page#section", want: "https://example.com/page"},
		{name: "query stripped", in: "https://example.com/page?utm=x", want: "https://example.com/page"},
		{name: "ftp rejected", in: "ftp://example.com/file", wantErr: true},
		{name: "no host", in: "https:///path", wantErr: true},
		{name: "relative rejected", in: "/about", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestIsPageURL(t *testing.T) {
	require.True(t, IsPageURL("https://example.com/about"))
	require.True(t, IsPageURL("https://example.com/docs/page.html"))
	require.False(t, IsPageURL("https://example.com/style.css"))
	require.False(t, IsPageURL("https://example.com/logo.png"))
	require.False(t, IsPageURL("mailto:hi@example.com"))
	require.False(t, IsPageURL(""))
}
