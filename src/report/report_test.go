package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"shotty/src/report"
)

type row struct {
	ID      string `json:"id" yaml:"id"`
	Project string `json:"project" yaml:"project"`
}

func (r row) Fields() []string { return []string{r.ID, r.Project} }

var rows = []row{{ID: "vol-1", Project: "web"}, {ID: "vol-2", Project: "<no project>"}}

func write(t *testing.T, format report.Format) string {
	t.Helper()
	var buf bytes.Buffer
	w := report.NewWriter(format, &buf, "ID", "PROJECT")
	for _, r := range rows {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Flush())
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    report.Format
		wantErr bool
	}{
		{"", report.FormatText, false},
		{"text", report.FormatText, false},
		{"TABLE", report.FormatTable, false},
		{" json ", report.FormatJSON, false},
		{"yaml", report.FormatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := report.ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestWriter_TextStreams(t *testing.T) {
	var buf bytes.Buffer
	w := report.NewWriter(report.FormatText, &buf)
	require.NoError(t, w.Write(rows[0]))
	assert.Equal(t, "vol-1, web\n", buf.String(), "text rows are written before Flush")
	require.NoError(t, w.Flush())
	assert.Equal(t, "vol-1, web\n", buf.String())
}

func TestWriter_Table(t *testing.T) {
	out := write(t, report.FormatTable)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "PROJECT")
	assert.Contains(t, out, "vol-2")
	assert.Contains(t, out, "<no project>")
}

func TestWriter_JSON(t *testing.T) {
	var got []row
	require.NoError(t, json.Unmarshal([]byte(write(t, report.FormatJSON)), &got))
	assert.Equal(t, rows, got)
}

func TestWriter_YAML(t *testing.T) {
	var got []row
	require.NoError(t, yaml.Unmarshal([]byte(write(t, report.FormatYAML)), &got))
	assert.Equal(t, rows, got)
}

func TestWriter_EmptyJSONIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.NewWriter(report.FormatJSON, &buf).Flush())
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}
