package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers:   []string{"#", "First Name", "Email"},
		Subtitles: []string{"Duration: 40 hours"},
		Rows: []map[string]string{
			{"#": "1", "First Name": "Ana", "Email": "ana@example.edu"},
			{"#": "2", "First Name": "Carlos", "Email": "carlos@example.edu"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#,First Name,Email", lines[0])
	assert.Contains(t, lines[1], "ana@example.edu")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Course: Algebra")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "Empty")
	assert.Error(t, err)
}
