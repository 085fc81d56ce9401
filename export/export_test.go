package export_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tzootz/midimix"
	"github.com/tzootz/midimix/export"
)

func testCurve() *midimix.Curve {
	c := midimix.NewCurve(30, 0, 2, []string{"A", "B"})
	c.Values[0][1] = 0.5
	c.Values[1][0] = 1
	c.Values[1][1] = 0.25
	return c
}

func TestJSON(t *testing.T) {
	data, err := export.JSON(testCurve())
	require.NoError(t, err)
	var decoded midimix.Curve
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 30, decoded.FPS)
	assert.Equal(t, []string{"A", "B"}, decoded.Names)
	assert.Equal(t, float32(0.5), decoded.Values[0][1])
}

func TestYAML(t *testing.T) {
	data, err := export.YAML(testCurve())
	require.NoError(t, err)
	var decoded midimix.Curve
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, 30, decoded.FPS)
	assert.Equal(t, []string{"A", "B"}, decoded.Names)
	assert.Equal(t, float32(0.25), decoded.Values[1][1])
}

func TestCSV(t *testing.T) {
	data, err := export.CSV(testCurve())
	require.NoError(t, err)
	expected := "frame,A,B\n0,0.0000,1.0000\n1,0.5000,0.2500\n"
	assert.Equal(t, expected, string(data))
}

func TestCSVStartOffset(t *testing.T) {
	c := testCurve()
	c.Start = 10
	data, err := export.CSV(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), "10,0.0000,1.0000\n")
	assert.Contains(t, string(data), "11,0.5000,0.2500\n")
}

func TestTemplaterNames(t *testing.T) {
	tmpl, err := export.NewTemplater()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"keyframes.txt.tmpl", "schedule.txt.tmpl"}, tmpl.Names())
}

func TestKeyframesTemplate(t *testing.T) {
	tmpl, err := export.NewTemplater()
	require.NoError(t, err)
	data, err := tmpl.Render("keyframes.txt.tmpl", testCurve())
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# channels: A, B @ 30 fps")
	assert.Contains(t, text, "0: 0.0000 1.0000")
	assert.Contains(t, text, "1: 0.5000 0.2500")
}

func TestScheduleTemplate(t *testing.T) {
	tmpl, err := export.NewTemplater()
	require.NoError(t, err)
	data, err := tmpl.Render("schedule.txt.tmpl", testCurve())
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "A: 0:(0.00), 1:(0.50)")
	assert.Contains(t, text, "B: 0:(1.00), 1:(0.25)")
}

func TestTemplaterFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.tmpl"), []byte("fps={{ .FPS }}"), 0644))
	tmpl, err := export.NewTemplaterFromDir(dir)
	require.NoError(t, err)
	data, err := tmpl.Render("custom.tmpl", testCurve())
	require.NoError(t, err)
	assert.Equal(t, "fps=30", string(data))
}

func TestRenderUnknownTemplate(t *testing.T) {
	tmpl, err := export.NewTemplater()
	require.NoError(t, err)
	_, err = tmpl.Render("bogus.tmpl", testCurve())
	assert.Error(t, err)
}
