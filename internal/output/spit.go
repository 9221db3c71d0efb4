// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v2"

	"github.com/staranto/promptxctl/internal/attrs"
	"github.com/staranto/promptxctl/internal/config"
	"github.com/staranto/promptxctl/internal/role"
)

// Supported --output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the accepted --output values.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Options controls how a dataset is sliced and rendered.
type Options struct {
	Format      string
	Filter      string
	FilterDelim string
	Sort        string
	Color       bool
	Titles      bool
	// Attrs selects, titles and transforms the columns. Empty means
	// attrs.Default.
	Attrs attrs.AttrList
}

// group is the serialised form of a role.Group after filtering.
type group struct {
	Label  string                   `json:"label" yaml:"label"`
	Source string                   `json:"source" yaml:"source"`
	Roles  []map[string]interface{} `json:"roles" yaml:"roles"`
}

// SliceDiceSpit filters, sorts and renders raw, a JSON array of objects.
func SliceDiceSpit(raw []byte, opts Options, w io.Writer) error {
	rows := prepare(gjson.ParseBytes(raw), opts)

	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, nonNil(rows))
	case FormatYAML:
		return writeYAML(w, nonNil(rows))
	default:
		TableWriter(rows, opts, w)
		return nil
	}
}

// SpitRoles renders a role list.
func SpitRoles(roles []role.Role, opts Options, w io.Writer) error {
	raw, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}
	return SliceDiceSpit(raw, opts, w)
}

// SpitGroups renders roles under their group labels. Groups left empty by the
// filter are omitted.
func SpitGroups(groups []role.Group, opts Options, w io.Writer) error {
	out := make([]group, 0, len(groups))
	for _, g := range groups {
		raw, err := json.Marshal(g.Roles)
		if err != nil {
			return fmt.Errorf("failed to encode %s roles: %w", g.Source, err)
		}

		rows := prepare(gjson.ParseBytes(raw), opts)
		if len(rows) == 0 {
			continue
		}
		out = append(out, group{Label: g.Label, Source: g.Source.String(), Roles: rows})
	}

	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, out)
	case FormatYAML:
		return writeYAML(w, out)
	}

	titleStyle := lipgloss.NewStyle()
	if opts.Color {
		title, _, _ := getColors("colors")
		titleStyle = titleStyle.Bold(true).Foreground(lipgloss.Color(title))
	}

	for i, g := range out {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Roles))))
		TableWriter(g.Roles, opts, w)
	}
	return nil
}

// SpitRecord renders a single record. Text output is a two column key/value
// table in the order given by keys.
func SpitRecord(record map[string]interface{}, keys []string, opts Options, w io.Writer) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, record)
	case FormatYAML:
		return writeYAML(w, record)
	}

	rows := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, map[string]interface{}{"key": k, "value": record[k]})
	}

	opts.Attrs = attrs.AttrList{
		{Key: "key", OutputKey: "key", Include: true},
		{Key: "value", OutputKey: "value", Include: true},
	}
	opts.Titles = false
	TableWriter(rows, opts, w)
	return nil
}

// prepare applies the filter, attribute transforms and sort spec of opts to
// dataset.
func prepare(dataset gjson.Result, opts Options) []map[string]interface{} {
	al := opts.attrList()

	rows := FilterDataset(dataset, al, BuildFilters(opts.Filter, opts.FilterDelim))
	for _, row := range rows {
		for i := range al {
			if al[i].TransformSpec != "" && al[i].Key != "*" {
				row[al[i].OutputKey] = al[i].Transform(row[al[i].OutputKey])
			}
		}
	}

	SortDataset(rows, opts.Sort)
	log.Debugf("prepared %d row(s) with attrs %s", len(rows), al.String())
	return rows
}

func (o Options) attrList() attrs.AttrList {
	if len(o.Attrs) == 0 {
		return attrs.Default()
	}
	return o.Attrs
}

// TableWriter renders the result set in a tabular form honoring color and
// titles options.
func TableWriter(resultSet []map[string]interface{}, opts Options, w io.Writer) {
	if len(resultSet) == 0 {
		return
	}

	columns := make([]string, 0, len(opts.attrList()))
	for _, attr := range opts.attrList().Included() {
		columns = append(columns, attr.OutputKey)
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 1)

	rows := make([][]string, 0, len(resultSet))
	for _, result := range resultSet {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, InterfaceToString(result[col], "-"))
		}
		rows = append(rows, row)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(columns...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// DumpExamples renders a table of example command usages.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}

	rows := make([][]string, 0, len(examples))
	for _, ex := range examples {
		rows = append(rows, []string{ex[0], ex[1]})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers("Command", "Description").
		BorderHeader(false).
		Rows(rows...)

	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering.
func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}

func writeJSON(w io.Writer, v interface{}) error {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeYAML(w io.Writer, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// nonNil keeps an empty result encoding as [] rather than null.
func nonNil(rows []map[string]interface{}) []map[string]interface{} {
	if rows == nil {
		return []map[string]interface{}{}
	}
	return rows
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
