package handlers

import (
	"testing"

	"github.com/avct/uasurfer"
	"github.com/stretchr/testify/assert"
)

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{email: "ana.souza@example.com", want: "a*******a@example.com"},
		{email: "al@example.com", want: "**@example.com"},
		{email: "not-an-email", want: ""},
		{email: "a@b@example.com", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactEmail(tt.email))
		})
	}
}

func TestBrowserVersion(t *testing.T) {
	tests := []struct {
		name    string
		version uasurfer.Version
		want    string
	}{
		{name: "unknown", version: uasurfer.Version{}, want: ""},
		{name: "major only", version: uasurfer.Version{Major: 17}, want: "17"},
		{name: "major and minor", version: uasurfer.Version{Major: 17, Minor: 4}, want: "17.4"},
		{name: "full", version: uasurfer.Version{Major: 120, Minor: 0, Patch: 6099}, want: "120.0.6099"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, browserVersion(tt.version))
		})
	}
}
