package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDomainFromURI(t *testing.T) {
	domain, err := GetDomainFromURI("https://blog.example.com/posts?id=1")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)

	_, err = GetDomainFromURI("http://localhost:8080")
	assert.Error(t, err)
}

func TestNormalizeWebsite(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "  example.com ", want: "https://example.com"},
		{in: "http://go.dev/doc", want: "http://go.dev/doc"},
		{in: "ftp://example.com", wantErr: true},
		{in: "localhost", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeWebsite(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
