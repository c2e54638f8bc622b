package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateScrapeURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https", url: "https://example.com/docs", wantErr: false},
		{name: "valid http", url: "http://example.com", wantErr: false},
		{name: "localhost allowed", url: "http://localhost:8080/page", wantErr: false},
		{name: "ftp rejected", url: "ftp://example.com/file", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "bare word host", url: "https://intranet/page", wantErr: true},
		{name: "relative path", url: "/docs/page", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScrapeURL(tt.url, nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSameDomain(t *testing.T) {
	assert.True(t, SameDomain("https://example.com/a", "https://example.com/b"))
	assert.True(t, SameDomain("https://www.example.com", "https://example.com/x"))
	assert.False(t, SameDomain("https://example.com", "https://other.com"))
	assert.False(t, SameDomain("://bad", "https://example.com"))
}
