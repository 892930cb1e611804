package versioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	cases := []struct {
		version, commit string
		expected        string
	}{
		{"", "", "dev"},
		{"v0.3.0", "", "v0.3.0"},
		{"v0.3.0", "0123456789abcdef", "v0.3.0 (01234567)"},
		{"", "abc", "dev (abc)"},
	}

	t.Cleanup(func() {
		Version, Commit = "", ""
	})

	for _, c := range cases {
		Version, Commit = c.version, c.commit

		assert.Equal(t, c.expected, String())
	}
}
