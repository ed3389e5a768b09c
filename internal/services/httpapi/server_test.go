package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/temirov/ghtree/internal/github"
	"github.com/temirov/ghtree/internal/services/httpapi"
	"github.com/temirov/ghtree/internal/types"
	"github.com/temirov/ghtree/internal/viewer"
)

const sampleTreeJSON = `{"truncated":false,"tree":[` +
	`{"path":"docs","type":"tree"},` +
	`{"path":"docs/guide.md","type":"blob","size":2048},` +
	`{"path":"main.go","type":"blob","size":100}]}`

func newGitHubStub(t *testing.T) *httptest.Server {
	t.Helper()
	router := http.NewServeMux()
	router.HandleFunc("/repos/octo/hello", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"full_name":"octo/hello","description":"","default_branch":"main"}`))
	})
	router.HandleFunc("/repos/octo/hello/branches", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`[{"name":"main"},{"name":"dev"}]`))
	})
	router.HandleFunc("/repos/octo/hello/git/trees/main", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(sampleTreeJSON))
	})
	stub := httptest.NewServer(router)
	t.Cleanup(stub.Close)
	return stub
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	stub := newGitHubStub(t)
	source := github.NewClient(stub.Client()).WithAPIBase(stub.URL).ForRepository("octo", "hello")
	session := viewer.NewSession(source, nil, nil)
	if openErr := session.Open(context.Background()); openErr != nil {
		t.Fatalf("open session: %v", openErr)
	}
	return httpapi.NewServer(httpapi.Config{Session: session}).Handler()
}

func performGet(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	return recorder
}

func TestServerTreeEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	testCases := []struct {
		name          string
		target        string
		expectedFiles int
		expectedNames []string
	}{
		{name: "full tree", target: "/tree", expectedFiles: 2, expectedNames: []string{"docs", "main.go"}},
		{name: "filtered", target: "/tree?q=GUIDE", expectedFiles: 1, expectedNames: []string{"docs"}},
		{name: "no matches", target: "/tree?q=zzz", expectedFiles: 0, expectedNames: nil},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			recorder := performGet(t, handler, testCase.target)
			if recorder.Code != http.StatusOK {
				t.Fatalf("unexpected status %d: %s", recorder.Code, recorder.Body.String())
			}
			var response httpapi.TreeResponse
			if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if response.Branch != "main" || response.Repository != "octo/hello" {
				t.Fatalf("unexpected response header fields %+v", response)
			}
			if response.Summary.TotalFiles != testCase.expectedFiles {
				t.Fatalf("expected %d files, got %d", testCase.expectedFiles, response.Summary.TotalFiles)
			}
			var names []string
			for _, child := range response.Tree.Children {
				names = append(names, child.Name)
			}
			if len(names) != len(testCase.expectedNames) {
				t.Fatalf("expected children %v, got %v", testCase.expectedNames, names)
			}
			for index, name := range names {
				if name != testCase.expectedNames[index] {
					t.Fatalf("expected children %v, got %v", testCase.expectedNames, names)
				}
			}
		})
	}
}

func TestServerListEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	recorder := performGet(t, handler, "/list?q=docs/")
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", recorder.Code)
	}
	var response httpapi.ListResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Files) != 1 || response.Files[0].Path != "docs/guide.md" || response.Files[0].Size != "2 KB" {
		t.Fatalf("unexpected files %+v", response.Files)
	}
	if response.Files[0].Highlight == nil || response.Files[0].Highlight.Match != "docs/" {
		t.Fatalf("expected highlight on path, got %+v", response.Files[0].Highlight)
	}
}

func TestServerBranchesAndRepository(t *testing.T) {
	handler := newTestHandler(t)

	var branches httpapi.BranchesResponse
	if err := json.NewDecoder(performGet(t, handler, "/branches").Body).Decode(&branches); err != nil {
		t.Fatalf("decode branches: %v", err)
	}
	if branches.Current != "main" || len(branches.Branches) != 2 {
		t.Fatalf("unexpected branches %+v", branches)
	}

	var repository types.Repository
	if err := json.NewDecoder(performGet(t, handler, "/repository").Body).Decode(&repository); err != nil {
		t.Fatalf("decode repository: %v", err)
	}
	if repository.FullName != "octo/hello" || repository.DefaultBranch != "main" {
		t.Fatalf("unexpected repository %+v", repository)
	}
}

func TestServerMapsUpstreamStatus(t *testing.T) {
	handler := newTestHandler(t)
	recorder := performGet(t, handler, "/tree?branch=missing")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("expected error message")
	}
}

func TestServerRejectsUnknownPathsAndMethods(t *testing.T) {
	handler := newTestHandler(t)
	if recorder := performGet(t, handler, "/unknown"); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", recorder.Code)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/tree", nil))
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}
}

func TestServerRunExposesCapabilities(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := viewer.NewSession(github.NewClient(nil).ForRepository("octo", "hello"), nil, nil)
	server := httpapi.NewServer(httpapi.Config{Address: "127.0.0.1:0", Session: session})
	addressCh := make(chan string, 1)
	errorCh := make(chan error, 1)

	go func() {
		errorCh <- server.Run(ctx, func(address string) {
			addressCh <- address
		})
	}()

	select {
	case address := <-addressCh:
		client := http.Client{Timeout: 2 * time.Second}
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+address+"/", nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		response, err := client.Do(request)
		if err != nil {
			t.Fatalf("perform request: %v", err)
		}
		defer response.Body.Close()
		if response.StatusCode != http.StatusOK {
			t.Fatalf("unexpected status: %d", response.StatusCode)
		}
		var body struct {
			Capabilities []httpapi.Capability `json:"capabilities"`
		}
		if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(body.Capabilities) != 4 {
			t.Fatalf("expected 4 capabilities, got %d", len(body.Capabilities))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server did not start")
	}

	cancel()
	if err := <-errorCh; err != nil {
		t.Fatalf("server error: %v", err)
	}
}
