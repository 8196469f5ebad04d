// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListWorkflowRuns(t *testing.T) {
	var receivedPath, receivedQuery string
	server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		receivedPath = request.URL.Path
		receivedQuery = request.URL.RawQuery
		json.NewEncoder(writer).Encode(map[string]any{
			"total_count": 2,
			"workflow_runs": []WorkflowRun{
				{ID: 11, RunNumber: 5, Conclusion: "success", HeadBranch: "main"},
				{ID: 10, RunNumber: 4, Conclusion: "failure", HeadBranch: "main"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)
	iterator, err := client.ListWorkflowRuns("acme/api", 1234, WorkflowRunsOptions{Status: "completed", PerPage: 50})
	if err != nil {
		t.Fatalf("ListWorkflowRuns: %v", err)
	}
	runs, err := iterator.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}

	if receivedPath != "/repos/acme/api/actions/workflows/1234/runs" {
		t.Errorf("path = %s", receivedPath)
	}
	if receivedQuery != "per_page=50&status=completed" {
		t.Errorf("query = %s, want per_page=50&status=completed", receivedQuery)
	}
	if len(runs) != 2 || runs[0].ID != 11 || runs[1].Conclusion != "failure" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestListWorkflowsFollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Query().Get("page") {
		case "":
			writer.Header().Set("Link", `<`+server.URL+`/repos/acme/api/actions/workflows?page=2>; rel="next"`)
			json.NewEncoder(writer).Encode(map[string]any{
				"workflows": []Workflow{{ID: 1, Name: "CI", Path: ".github/workflows/ci.yml"}},
			})
		case "2":
			json.NewEncoder(writer).Encode(map[string]any{
				"workflows": []Workflow{{ID: 2, Name: "Release", Path: ".github/workflows/release.yml"}},
			})
		default:
			t.Errorf("unexpected page %q", request.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	iterator, err := client.ListWorkflows("acme/api", 0)
	if err != nil {
		t.Fatalf("ListWorkflows: %v", err)
	}
	workflows, err := iterator.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(workflows) != 2 || workflows[1].Name != "Release" {
		t.Errorf("workflows = %+v", workflows)
	}
}

func TestGetCommitAuthorLogin(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "linked account",
			body: `{"sha":"abc","author":{"login":"octocat"},"commit":{"author":{"name":"Mona"}}}`,
			want: "octocat",
		},
		{
			name: "unlinked email falls back to git author",
			body: `{"sha":"abc","author":null,"commit":{"author":{"name":"Mona"}}}`,
			want: "Mona",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewTLSServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				if request.URL.Path != "/repos/acme/api/commits/abc" {
					t.Errorf("unexpected path: %s", request.URL.Path)
				}
				writer.Write([]byte(test.body))
			}))
			defer server.Close()

			client := newTestClient(t, server)
			commit, err := client.GetCommit(context.Background(), "acme/api", "abc")
			if err != nil {
				t.Fatalf("GetCommit: %v", err)
			}
			if got := commit.AuthorLogin(); got != test.want {
				t.Errorf("AuthorLogin() = %q, want %q", got, test.want)
			}
		})
	}
}
