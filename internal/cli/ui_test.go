package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 batches"},
		{1, "1 batch"},
		{3, "3 batches"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, plural(tt.n, "batch", "batches"))
	}
	assert.Equal(t, "2 lock files", plural(2, "lock file", "lock files"))
}
