package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebug_listsStatesAndAccepts(t *testing.T) {
	a := buildTestAutomaton(t)
	out := Debug(a, 0)

	assert.Contains(t, out, "State")
	assert.Contains(t, out, "Accepts")
	assert.Contains(t, out, "AB")
	assert.Contains(t, out, "states")
	assert.True(t, strings.Contains(out, "error"))
}
