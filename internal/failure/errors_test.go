package failure_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photolink/internal/failure"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failure.Wrap(failure.ErrWrite, "commit", "rename", "replace catalog", base)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrWrite)
	assert.ErrorIs(t, err, base)
	for _, fragment := range []string{"commit", "rename", "replace catalog"} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := failure.Wrap(nil, "", "", "", nil)
	assert.ErrorIs(t, err, failure.ErrInput)
	assert.Contains(t, err.Error(), "reconcile failure")
}

func TestKindMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"input", failure.Wrap(failure.ErrInput, "load", "", "", nil), "input"},
		{"write", failure.Wrap(failure.ErrWrite, "backup", "", "", nil), "write"},
		{"configuration", failure.Wrap(failure.ErrConfiguration, "config", "", "", nil), "configuration"},
		{"locked", fmt.Errorf("outer: %w", failure.ErrLocked), "locked"},
		{"unclassified", context.Canceled, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failure.Kind(tt.err))
		})
	}
}

func TestHintMentionsIntactCatalogForWriteErrors(t *testing.T) {
	err := failure.Wrap(failure.ErrWrite, "backup", "copy", "", errors.New("disk full"))
	assert.Contains(t, failure.Hint(err), "intact")
	assert.Empty(t, failure.Hint(errors.New("other")))
}
