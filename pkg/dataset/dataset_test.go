package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArray(t *testing.T) {
	records, err := Load(strings.NewReader(`[{"problem":"1+1","solution":"2"},{"problem":"2*3","solution":"6"}]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2*3", records[1].String("problem"))
}

func TestLoadJSONLines(t *testing.T) {
	input := "{\"problem\":\"1+1\",\"solution\":\"2\"}\n\n{\"problem\":\"x^2\",\"solution\":\"2x\"}\n"
	records, err := Load(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2x", records[1].String("solution"))
}

func TestLoadJSONLinesReportsLine(t *testing.T) {
	_, err := Load(strings.NewReader("{\"problem\":\"ok\"}\n{broken\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestRecordString(t *testing.T) {
	records, err := Load(strings.NewReader(`[{"Question Text":"q","Correct Option":3,"missing":null}]`))
	require.NoError(t, err)

	rec := records[0]
	assert.Equal(t, "q", rec.String("question", "Question Text"))
	assert.Equal(t, "3", rec.String("correct_option", "Correct Option"))
	assert.Equal(t, "", rec.String("missing"))
	assert.Equal(t, "", rec.String("absent"))
}
