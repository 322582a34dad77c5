package emit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanLine_printsTokenNameAndQuotedText(t *testing.T) {
	a := buildTestAutomaton(t)

	var buf bytes.Buffer
	err := scanLine(a, "ab", &buf)
	require.NoError(t, err)

	assert.Equal(t, "AB \"ab\"\n", buf.String())
}

func TestScanLine_reportsNoMatch(t *testing.T) {
	a := buildTestAutomaton(t)

	var buf bytes.Buffer
	err := scanLine(a, "x", &buf)
	assert.Error(t, err)
}
