package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBugReportPatchEmpty(t *testing.T) {
	assert.True(t, BugReportPatch{}.Empty())

	n := int64(5)
	assert.False(t, BugReportPatch{Number: &n}.Empty())
}
