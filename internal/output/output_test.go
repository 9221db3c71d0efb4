// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/staranto/promptxctl/internal/attrs"
	"github.com/staranto/promptxctl/internal/config"
	"github.com/staranto/promptxctl/internal/role"
)

func init() {
	// Keep table rendering independent of any config file on the host.
	config.Config = config.Type{Source: "test", Data: map[string]interface{}{"padding": 1}}
}

func testRoles() []role.Role {
	return []role.Role{
		{ID: "assistant", Name: "Assistant", Description: "General helper", Source: role.System, Protocol: role.Protocol},
		{ID: "pm", Name: "Product Manager", Description: "Plans work", Source: role.Project, Protocol: role.Protocol},
		{ID: "dev", Name: "Developer", Description: "Writes code", Source: role.User, Protocol: role.Protocol},
	}
}

func TestSortDataset(t *testing.T) {
	testData := []map[string]interface{}{
		{"name": "zebra", "count": 3.0, "source": "user"},
		{"name": "Alpha", "count": 1.0, "source": "system"},
		{"name": "beta", "count": 2.0, "source": "user"},
	}

	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{name: "ascending by name", spec: "name", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "descending by name", spec: "-name", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "ascending by count", spec: "count", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "descending by count", spec: "-count", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "case sensitive", spec: "!name", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "case sensitive descending", spec: "-!name", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "multiple fields", spec: "source,-count", wantOrder: []string{"Alpha", "zebra", "beta"}},
		{name: "missing key is stable", spec: "nope", wantOrder: []string{"zebra", "Alpha", "beta"}},
		{name: "empty spec", spec: "", wantOrder: []string{"zebra", "Alpha", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]map[string]interface{}, len(testData))
			copy(data, testData)
			SortDataset(data, tt.spec)
			for i, expectedName := range tt.wantOrder {
				assert.Equal(t, expectedName, data[i]["name"], "at index %d", i)
			}
		})
	}
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{name: "string", value: "hello", want: "hello"},
		{name: "int", value: 42, want: "42"},
		{name: "float64", value: 42.0, want: "42"},
		{name: "float64 with decimal", value: 42.5, want: "42.5"},
		{name: "bool true", value: true, want: "true"},
		{name: "bool false is zero value", value: false, want: ""},
		{name: "nil default", value: nil, want: ""},
		{name: "nil custom", value: nil, emptyVal: "-", want: "-"},
		{name: "slice", value: []string{"a", "b"}, want: `["a","b"]`},
		{name: "map", value: map[string]int{"x": 1}, want: `{"x":1}`},
		{name: "zero value with custom empty", value: 0, emptyVal: "N/A", want: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpitRoles_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := SpitRoles(testRoles(), Options{Format: FormatJSON, Filter: "source!=system", Sort: "id"}, &buf)
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "dev", got[0]["id"])
	assert.Equal(t, "pm", got[1]["id"])
	assert.Equal(t, "project", got[1]["source"])
}

func TestSpitRoles_EmptyJSONIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SpitRoles(nil, Options{Format: FormatJSON}, &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestSpitRoles_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SpitRoles(testRoles(), Options{Format: FormatYAML, Filter: "id=pm"}, &buf))

	var got []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Product Manager", got[0]["name"])
}

func TestSpitRoles_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SpitRoles(testRoles(), Options{Format: FormatText, Titles: true, Sort: "-id"}, &buf))

	out := buf.String()
	assert.Contains(t, out, "description")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "pm")
	assert.Contains(t, lines[2], "dev")
	assert.Contains(t, lines[3], "assistant")
}

func TestSpitRoles_TextEmptyWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SpitRoles(testRoles(), Options{Filter: "id=nobody"}, &buf))
	assert.Empty(t, buf.String())
}

func TestSpitGroups(t *testing.T) {
	groups := role.GroupBySource(testRoles())

	t.Run("json drops groups emptied by the filter", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SpitGroups(groups, Options{Format: FormatJSON, Filter: "source!=project"}, &buf))

		var got []group
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "📦 系统角色", got[0].Label)
		assert.Equal(t, "user", got[1].Source)
		assert.Equal(t, "dev", got[1].Roles[0]["id"])
	})

	t.Run("text prints labels in order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SpitGroups(groups, Options{Format: FormatText}, &buf))

		out := buf.String()
		sys := strings.Index(out, "📦 系统角色 (1)")
		proj := strings.Index(out, "🏢 项目角色 (1)")
		usr := strings.Index(out, "👤 用户角色 (1)")
		require.True(t, sys >= 0 && proj >= 0 && usr >= 0, out)
		assert.Less(t, sys, proj)
		assert.Less(t, proj, usr)
	})
}

func TestSpitRecord(t *testing.T) {
	record := map[string]interface{}{"available": true, "url": "http://localhost:8000"}

	var buf bytes.Buffer
	require.NoError(t, SpitRecord(record, []string{"url", "available"}, Options{}, &buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "http://localhost:8000")
	assert.Contains(t, lines[1], "true")

	buf.Reset()
	require.NoError(t, SpitRecord(record, nil, Options{Format: FormatJSON}, &buf))
	assert.JSONEq(t, `{"available":true,"url":"http://localhost:8000"}`, buf.String())
}

func TestDumpExamples(t *testing.T) {
	var buf bytes.Buffer
	DumpExamples(&buf, nil)
	assert.Empty(t, buf.String())

	DumpExamples(&buf, [][2]string{{"promptxctl roles", "list roles"}})
	assert.Contains(t, buf.String(), "promptxctl roles")
	assert.Contains(t, buf.String(), "list roles")
}

func TestSpitRoles_Attrs(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Format: FormatJSON, Attrs: attrs.Build("description:desc:5,name::u"), Filter: "desc^Plans"}
	require.NoError(t, SpitRoles(testRoles(), opts, &buf))

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Plans", got[0]["desc"])
	assert.Equal(t, "PRODUCT MANAGER", got[0]["name"])
	assert.Equal(t, "role", got[0]["protocol"])
	assert.NotContains(t, got[0], "description")

	buf.Reset()
	opts = Options{Format: FormatText, Titles: true, Attrs: attrs.Build("!description,!source"), Sort: "id"}
	require.NoError(t, SpitRoles(testRoles(), opts, &buf))
	header := strings.Split(buf.String(), "\n")[0]
	assert.Contains(t, header, "id")
	assert.Contains(t, header, "name")
	assert.NotContains(t, header, "description")
	assert.NotContains(t, header, "source")
}
