// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/promptxctl/internal/config"
)

const rolesBody = `{"code":0,"msg":"ok","data":[
  {"id":"assistant","name":"Assistant","description":"General helper","source":"system","protocol":"role"},
  {"id":"pm","name":"Product Manager","description":"Plans work","source":"project","protocol":"role"},
  {"id":"dev","name":"Developer","description":"Writes code","source":"user","protocol":"role"}
]}`

type fakeService struct {
	*httptest.Server
	roleCalls   atomic.Int32
	promptCalls atomic.Int32
	lastPrompt  map[string]string
}

func newFakeService(t *testing.T, statusBody string) *fakeService {
	t.Helper()

	fs := &fakeService{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /promptx/roles", func(w http.ResponseWriter, r *http.Request) {
		fs.roleCalls.Add(1)
		_, _ = io.WriteString(w, rolesBody)
	})
	mux.HandleFunc("POST /promptx/generate-prompt", func(w http.ResponseWriter, r *http.Request) {
		fs.promptCalls.Add(1)
		_ = json.NewDecoder(r.Body).Decode(&fs.lastPrompt)
		_, _ = io.WriteString(w, `{"code":0,"msg":"ok","data":"Generated prompt text"}`)
	})
	mux.HandleFunc("GET /promptx/status", func(w http.ResponseWriter, r *http.Request) {
		if statusBody == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"code":503,"msg":"PromptX service unavailable","data":null}`)
			return
		}
		_, _ = io.WriteString(w, statusBody)
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

// run executes the app with a throwaway config file and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile := filepath.Join(t.TempDir(), "promptxctl.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("retry:\n  max: 1\n"), 0o600))
	t.Setenv("PROMPTXCTL_CFG", cfgFile)
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	full := append([]string{"promptxctl"}, args...)
	app, err := InitApp(context.Background(), full)
	require.NoError(t, err)

	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard

	err = app.Run(context.Background(), full)
	return out.String(), err
}

func TestRolesCommand_JSON(t *testing.T) {
	svc := newFakeService(t, "")

	out, err := run(t, "roles", "--url", svc.URL, "-o", "json", "-s", "id")
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "assistant", got[0]["id"])
	assert.Equal(t, "dev", got[1]["id"])
	assert.Equal(t, "pm", got[2]["id"])
	assert.EqualValues(t, 1, svc.roleCalls.Load())
}

func TestRolesCommand_SourceAndFilter(t *testing.T) {
	svc := newFakeService(t, "")

	out, err := run(t, "roles", "--url", svc.URL, "-o", "json", "--source", "project")
	require.NoError(t, err)
	assert.Contains(t, out, `"id":"pm"`)
	assert.NotContains(t, out, `"id":"dev"`)

	out, err = run(t, "roles", "--url", svc.URL, "-o", "json", "-f", "name~developer")
	require.NoError(t, err)
	assert.Contains(t, out, `"id":"dev"`)
	assert.NotContains(t, out, `"id":"pm"`)
}

func TestRolesCommand_Grouped(t *testing.T) {
	svc := newFakeService(t, "")

	out, err := run(t, "roles", "--url", svc.URL, "--grouped")
	require.NoError(t, err)

	sys := strings.Index(out, "📦 系统角色")
	proj := strings.Index(out, "🏢 项目角色")
	usr := strings.Index(out, "👤 用户角色")
	require.True(t, sys >= 0 && proj >= 0 && usr >= 0, out)
	assert.Less(t, sys, proj)
	assert.Less(t, proj, usr)
}

func TestRolesCommand_InvalidFlags(t *testing.T) {
	svc := newFakeService(t, "")

	tests := []struct {
		name string
		args []string
	}{
		{name: "bad output", args: []string{"roles", "--url", svc.URL, "-o", "xml"}},
		{name: "bad source", args: []string{"roles", "--url", svc.URL, "--source", "team"}},
		{name: "bad url", args: []string{"roles", "--url", "ftp://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
	assert.EqualValues(t, 0, svc.roleCalls.Load())
}

func TestRolesCommand_Attrs(t *testing.T) {
	svc := newFakeService(t, "")

	out, err := run(t, "roles", "--url", svc.URL, "-t", "-a", "!description,name::u", "-s", "id")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.NotContains(t, lines[0], "description")
	assert.Contains(t, lines[1], "ASSISTANT")
}

func TestRoleCommand(t *testing.T) {
	svc := newFakeService(t, "")

	out, err := run(t, "role", "pm", "--url", svc.URL, "-o", "json")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Product Manager", got["name"])
	assert.Equal(t, "🏢 项目角色", got["label"])

	_, err = run(t, "role", "nobody", "--url", svc.URL)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	_, err = run(t, "role", "--url", svc.URL)
	assert.ErrorIs(t, err, ErrMissingRoleID)
}

func TestPromptCommand(t *testing.T) {
	svc := newFakeService(t, "")

	out, err := run(t, "prompt", "dev", "--url", svc.URL)
	require.NoError(t, err)
	assert.Equal(t, "Generated prompt text\n", out)
	assert.EqualValues(t, 1, svc.promptCalls.Load())
	assert.Equal(t, map[string]string{
		"roleId":          "dev",
		"roleName":        "Developer",
		"roleDescription": "Writes code",
	}, svc.lastPrompt)

	out, err = run(t, "prompt", "dev", "--url", svc.URL, "--name", "Dev", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"roleId":"dev","prompt":"Generated prompt text"}`, out)
	assert.Equal(t, "Dev", svc.lastPrompt["roleName"])
}

func TestStatusCommand(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		svc := newFakeService(t, `{"code":0,"msg":"ok","data":true}`)

		out, err := run(t, "status", "--url", svc.URL, "--roles", "-o", "json")
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, true, got["available"])
		assert.EqualValues(t, 3, got["roles"])
		assert.EqualValues(t, 3, got["groups"])
		assert.Equal(t, "now", got["fetched"])
	})

	t.Run("unavailable", func(t *testing.T) {
		svc := newFakeService(t, "")

		out, err := run(t, "status", "--url", svc.URL, "--roles", "-o", "json")
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, false, got["available"])
		assert.Equal(t, "PromptX service unavailable", got["error"])
		assert.NotContains(t, got, "roles")
		assert.EqualValues(t, 0, svc.roleCalls.Load())
	})

	t.Run("rejected", func(t *testing.T) {
		svc := newFakeService(t, `{"code":500,"msg":"not ready","data":false}`)

		out, err := run(t, "status", "--url", svc.URL, "-o", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"url":"`+svc.URL+`","available":false,"error":"not ready"}`, out)
	})
}

func TestExamplesFlag(t *testing.T) {
	svc := newFakeService(t, "")

	out, err := run(t, "roles", "--url", svc.URL, "--examples")
	require.NoError(t, err)
	assert.Contains(t, out, "promptxctl roles --grouped")
	assert.EqualValues(t, 0, svc.roleCalls.Load())
}

func TestRetryPolicyFromConfig(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "promptxctl.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("retry:\n  max: 2\n  wait_min: 100ms\n"), 0o600))
	t.Setenv("PROMPTXCTL_CFG", cfgFile)
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	p := RetryPolicyFromConfig()
	assert.Equal(t, 2, p.MaxAttempts)
	assert.Equal(t, "100ms", p.InitialDelay.String())
	assert.Equal(t, "30s", p.MaxDelay.String())
}
