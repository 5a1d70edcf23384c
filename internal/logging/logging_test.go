package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"text", `level=WARN msg="unit skipped" unit=a.xml`},
		{"json", `"msg":"unit skipped","unit":"a.xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger, err := New(&buf, "info", tt.format)
			require.NoError(t, err)
			logger.Debug("hidden")
			logger.Warn("unit skipped", "unit", "a.xml")
			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), "hidden")
		})
	}
}

func TestNewRejects(t *testing.T) {
	t.Parallel()

	_, err := New(&bytes.Buffer{}, "loud", "text")
	assert.ErrorContains(t, err, "log level")
	_, err = New(&bytes.Buffer{}, "info", "xml")
	assert.ErrorContains(t, err, "log format")
}
