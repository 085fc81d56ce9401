// Package export writes rendered curves in formats a pipeline host can
// consume: json/yaml documents, csv tables and text generated from
// templates.
package export

import (
	"bytes"
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/Masterminds/sprig"
	"gopkg.in/yaml.v3"

	"github.com/tzootz/midimix"
)

// JSON encodes the curve as an indented json document.
func JSON(curve *midimix.Curve) ([]byte, error) {
	data, err := json.MarshalIndent(curve, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not marshal the curve as json: %v", err)
	}
	return data, nil
}

// YAML encodes the curve as a yaml document.
func YAML(curve *midimix.Curve) ([]byte, error) {
	data, err := yaml.Marshal(curve)
	if err != nil {
		return nil, fmt.Errorf("could not marshal the curve as yaml: %v", err)
	}
	return data, nil
}

// CSV encodes the curve as a table with a frame column and one column per
// channel.
func CSV(curve *midimix.Curve) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	header := append([]string{"frame"}, curve.Names...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("could not write csv header: %v", err)
	}
	for row := 0; row < curve.Frames(); row++ {
		record := make([]string, 0, len(curve.Names)+1)
		record = append(record, strconv.Itoa(curve.Start+row))
		for _, v := range curve.At(row) {
			record = append(record, strconv.FormatFloat(float64(v), 'f', 4, 32))
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("could not write csv row %d: %v", row, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("could not flush csv: %v", err)
	}
	return buf.Bytes(), nil
}

//go:embed templates/*.tmpl
var templateFS embed.FS

type (
	// Templater renders curves through text templates, for hosts whose
	// keyframe formats the fixed exporters do not cover.
	Templater struct {
		Template *template.Template
	}

	// templateRow is one frame of the curve as seen by a template.
	templateRow struct {
		Frame  int
		Values []float32
	}

	templateData struct {
		FPS   int
		Start int
		Names []string
		Rows  []templateRow
	}
)

// NewTemplater returns a templater using the default embedded templates.
func NewTemplater() (*Templater, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("could not create templates: %v", err)
	}
	return &Templater{Template: tmpl}, nil
}

// NewTemplaterFromDir returns a templater using the *.tmpl files in the
// given directory instead of the embedded ones.
func NewTemplaterFromDir(templateDirectory string) (*Templater, error) {
	globPtrn := filepath.Join(templateDirectory, "*.tmpl")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Templater{Template: tmpl}, nil
}

// Names lists the renderable template names.
func (t *Templater) Names() []string {
	var names []string
	for _, tmpl := range t.Template.Templates() {
		if tmpl.Name() != "base" {
			names = append(names, tmpl.Name())
		}
	}
	return names
}

// Render executes the named template with the curve.
func (t *Templater) Render(name string, curve *midimix.Curve) ([]byte, error) {
	data := templateData{
		FPS:   curve.FPS,
		Start: curve.Start,
		Names: curve.Names,
	}
	for row := 0; row < curve.Frames(); row++ {
		data.Rows = append(data.Rows, templateRow{Frame: curve.Start + row, Values: curve.At(row)})
	}
	buf := new(bytes.Buffer)
	if err := t.Template.ExecuteTemplate(buf, name, data); err != nil {
		return nil, fmt.Errorf("rendering template %v failed: %v", name, err)
	}
	return buf.Bytes(), nil
}
