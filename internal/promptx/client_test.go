// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package promptx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/promptxctl/internal/role"
	"github.com/staranto/promptxctl/internal/transport"
)

// fakeSender records calls and replays canned answers.
type fakeSender struct {
	requests []transport.Request
	resp     *transport.Response
	err      error
	cleared  int
}

func (f *fakeSender) Send(_ context.Context, r transport.Request) (*transport.Response, error) {
	f.requests = append(f.requests, r)
	return f.resp, f.err
}

func (f *fakeSender) ClearRequestTime() { f.cleared++ }

func TestListRoles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/xiaozhi/promptx/roles", r.URL.Path)
		_, _ = io.WriteString(w, `{"code":0,"msg":"success","data":[
			{"id":"pm","name":"PM","description":"d","source":"system","protocol":"role"},
			{"id":"dev","name":"Dev","description":"d","source":"project","protocol":"role"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(transport.New(transport.WithLogger(nil)), transport.Static(srv.URL+"/xiaozhi"))
	env, err := c.ListRoles(context.Background())
	require.NoError(t, err)

	result, err := env.Payload()
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, "success", result.Msg)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "pm", result.Data[0].ID)
	assert.Equal(t, role.Project, result.Data[1].Source)
}

func TestGeneratePrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/promptx/generate-prompt", r.URL.Path)
		var req role.GeneratePromptRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, role.GeneratePromptRequest{RoleID: "pm", RoleName: "PM", RoleDescription: "desc"}, req)
		_, _ = io.WriteString(w, `{"code":0,"msg":"success","data":"Generated prompt text"}`)
	}))
	defer srv.Close()

	c := NewClient(transport.New(transport.WithLogger(nil)), transport.Static(srv.URL))
	env, err := c.GeneratePrompt(context.Background(), role.GeneratePromptRequest{RoleID: "pm", RoleName: "PM", RoleDescription: "desc"})
	require.NoError(t, err)
	require.NotNil(t, env.Data)
	assert.Equal(t, "Generated prompt text", env.Data.Data)
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/promptx/status", r.URL.Path)
		_, _ = io.WriteString(w, `{"code":0,"msg":"success","data":true}`)
	}))
	defer srv.Close()

	c := NewClient(transport.New(transport.WithLogger(nil)), transport.Static(srv.URL))
	env, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, env.Data.OK())
	assert.True(t, env.Data.Data)
}

func TestCall_ClearsRequestTimeOnSuccessOnly(t *testing.T) {
	f := &fakeSender{resp: &transport.Response{StatusCode: 200, Body: []byte(`{"code":0,"data":[]}`)}}
	c := NewClient(f, transport.Static("http://svc"))

	_, err := c.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.cleared)
	assert.Equal(t, "http://svc/promptx/roles", f.requests[0].URL)
	assert.Nil(t, f.requests[0].Body)

	f.resp, f.err = nil, &transport.Error{StatusCode: 500, Message: "boom"}
	_, err = c.ListRoles(context.Background())
	var te *transport.Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "boom", te.Message)
	assert.Equal(t, 1, f.cleared)

	f.err = errors.Join(transport.ErrNetwork, errors.New("connection refused"))
	_, err = c.ListRoles(context.Background())
	assert.ErrorIs(t, err, transport.ErrNetwork)
	assert.Equal(t, 1, f.cleared)
}

func TestCall_Envelope(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantData bool
		wantCode *int
		wantErr  error
	}{
		{name: "empty body", body: "", wantData: false},
		{name: "null body", body: " null ", wantData: false},
		{name: "no code", body: `{"msg":"?","data":[]}`, wantData: true},
		{name: "error code", body: `{"code":503,"msg":"PromptX MCP服务不可用","data":null}`, wantData: true, wantCode: intPtr(503)},
		{name: "wrong data shape", body: `{"code":0,"data":"nope"}`, wantErr: transport.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSender{resp: &transport.Response{StatusCode: 200, Body: []byte(tt.body)}}
			env, err := NewClient(f, transport.Static("http://svc")).ListRoles(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, env.Data != nil)

			payload, perr := env.Payload()
			if !tt.wantData {
				assert.ErrorIs(t, perr, ErrEmptyResponse)
				return
			}
			require.NoError(t, perr)
			assert.Equal(t, tt.wantCode, payload.Code)
			assert.False(t, payload.OK())
		})
	}
}

func intPtr(i int) *int { return &i }
