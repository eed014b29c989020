package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name  string
		info  Info
		want  string
		short string
	}{
		{
			name:  "development build",
			info:  Info{Version: "dev", CommitHash: "dev", BuildTime: "unknown"},
			want:  "obelisk dev (commit dev, built unknown)",
			short: "dev",
		},
		{
			name:  "tagged build",
			info:  Info{Version: "v0.3.0", CommitHash: "4f1c2a9e8b7d", BuildTime: "2026-10-01T12:00:00Z"},
			want:  "obelisk v0.3.0 (commit 4f1c2a9, built 2026-10-01T12:00:00Z)",
			short: "4f1c2a9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
			assert.Equal(t, tt.short, tt.info.Short())
		})
	}
}
