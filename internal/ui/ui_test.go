package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessages(t *testing.T) {
	t.Parallel()

	assert.Contains(t, SuccessMsg("done %d", 4), "done 4")
	assert.Contains(t, ErrorMsg("exit code %d", 2), "exit code 2")
	assert.Contains(t, WarnMsg("skipped"), "skipped")
	assert.Contains(t, InfoMsg("Executing: %s", "jupyter --version"), "Executing: jupyter --version")
	assert.Contains(t, Section("Step 1"), "Step 1")
}
