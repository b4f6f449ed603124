package textextract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromReaderPlainText(t *testing.T) {
	content := "First paragraph.\n\nSecond paragraph.\n"

	result, err := FromReader(strings.NewReader(content), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", result.Text)
	assert.Equal(t, 1, result.Pages)
}

func TestFromReaderPlainTextPageEstimate(t *testing.T) {
	content := strings.Repeat("a", 7000)

	result, err := FromReader(strings.NewReader(content), "big.md")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Pages) // ceil(7000 / 3000)
}

func TestFromReaderEmptyText(t *testing.T) {
	result, err := FromReader(strings.NewReader("   \n "), "empty.txt")
	require.NoError(t, err)
	assert.Empty(t, result.Text)
	assert.Equal(t, 1, result.Pages)
}

func TestFromReaderInvalidPDF(t *testing.T) {
	_, err := FromReader(strings.NewReader("this is not a pdf"), "broken.pdf")
	assert.Error(t, err)
}
