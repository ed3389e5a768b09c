// Package httpapi exposes a repository view as read-only JSON endpoints.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ghtree/internal/github"
	"github.com/temirov/ghtree/internal/render"
	"github.com/temirov/ghtree/internal/types"
	"github.com/temirov/ghtree/internal/viewer"
)

const (
	defaultListenAddress    = "127.0.0.1:0"
	defaultShutdownDuration = 5 * time.Second
	headerContentType       = "Content-Type"
	mimeTypeJSON            = "application/json"
	rootPath                = "/"
	repositoryPath          = "/repository"
	branchesPath            = "/branches"
	treePath                = "/tree"
	listPath                = "/list"
	queryParameterBranch    = "branch"
	queryParameterQuery     = "q"
	errorFieldName          = "error"
	errorNotFound           = "not found"
)

// Capability describes an endpoint exposed by the server.
type Capability struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var capabilities = []Capability{
	{Name: "repository", Path: repositoryPath, Description: "Repository name, description and default branch"},
	{Name: "branches", Path: branchesPath, Description: "Branch names and the loaded branch"},
	{Name: "tree", Path: treePath, Description: "Filtered directory tree; parameters branch and q"},
	{Name: "list", Path: listPath, Description: "Filtered flat file list; parameters branch and q"},
}

// TreeResponse is the payload of the tree endpoint.
type TreeResponse struct {
	Repository string                `json:"repository"`
	Branch     string                `json:"branch"`
	Query      string                `json:"query,omitempty"`
	Truncated  bool                  `json:"truncated,omitempty"`
	Summary    *types.OutputSummary  `json:"summary"`
	Tree       *types.TreeOutputNode `json:"tree"`
}

// ListResponse is the payload of the list endpoint.
type ListResponse struct {
	Repository string                 `json:"repository"`
	Branch     string                 `json:"branch"`
	Query      string                 `json:"query,omitempty"`
	Truncated  bool                   `json:"truncated,omitempty"`
	Summary    *types.OutputSummary   `json:"summary"`
	Files      []types.ListOutputItem `json:"files"`
}

// BranchesResponse is the payload of the branches endpoint.
type BranchesResponse struct {
	Current  string         `json:"current"`
	Branches []types.Branch `json:"branches"`
}

// Config defines runtime options for the server.
type Config struct {
	Address         string
	ShutdownTimeout time.Duration
	Session         *viewer.Session
	Logger          *zap.Logger
}

// Server serves a shared viewer session over HTTP.
type Server struct {
	config Config
}

// NewServer creates a new Server with defaults applied.
func NewServer(config Config) Server {
	normalized := config
	if normalized.Address == "" {
		normalized.Address = defaultListenAddress
	}
	if normalized.ShutdownTimeout <= 0 {
		normalized.ShutdownTimeout = defaultShutdownDuration
	}
	if normalized.Logger == nil {
		normalized.Logger = zap.NewNop()
	}
	return Server{config: normalized}
}

// Handler returns the router serving all endpoints.
func (server Server) Handler() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc(rootPath, server.handleRoot)
	router.HandleFunc(repositoryPath, server.handleRepository)
	router.HandleFunc(branchesPath, server.handleBranches)
	router.HandleFunc(treePath, server.handleTree)
	router.HandleFunc(listPath, server.handleList)
	return router
}

// Run starts the server and blocks until the provided context is canceled.
// The notify callback receives the bound address once the listener is active.
func (server Server) Run(ctx context.Context, notify func(string)) error {
	listener, listenErr := net.Listen("tcp", server.config.Address)
	if listenErr != nil {
		return fmt.Errorf("listen on %s: %w", server.config.Address, listenErr)
	}
	actualAddress := listener.Addr().String()

	httpServer := &http.Server{Handler: server.Handler()}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		serveErr := httpServer.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", serveErr)
		}
		return nil
	})

	server.config.Logger.Info("serving repository view", zap.String("address", actualAddress))
	if notify != nil {
		notify(actualAddress)
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		shutdownErr := httpServer.Shutdown(shutdownCtx)
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) && !errors.Is(shutdownErr, http.ErrServerClosed) {
			return fmt.Errorf("shutdown HTTP: %w", shutdownErr)
		}
		return nil
	})

	return group.Wait()
}

func (server Server) handleRoot(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if request.URL.Path != rootPath {
		server.writeJSON(writer, http.StatusNotFound, map[string]string{errorFieldName: errorNotFound})
		return
	}
	payload := struct {
		Capabilities []Capability `json:"capabilities"`
	}{Capabilities: capabilities}
	server.writeJSON(writer, http.StatusOK, payload)
}

func (server Server) handleRepository(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	server.writeJSON(writer, http.StatusOK, server.config.Session.State().Repository)
}

func (server Server) handleBranches(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	state := server.config.Session.State()
	branches := state.Branches
	if branches == nil {
		branches = []types.Branch{}
	}
	server.writeJSON(writer, http.StatusOK, BranchesResponse{Current: state.Branch, Branches: branches})
}

func (server Server) handleTree(writer http.ResponseWriter, request *http.Request) {
	state, ok := server.resolveState(writer, request)
	if !ok {
		return
	}
	display := state.TreeView()
	server.writeJSON(writer, http.StatusOK, TreeResponse{
		Repository: state.Repository.FullName,
		Branch:     state.Branch,
		Query:      state.Query,
		Truncated:  state.Truncated,
		Summary:    render.Summarize(display),
		Tree:       display,
	})
}

func (server Server) handleList(writer http.ResponseWriter, request *http.Request) {
	state, ok := server.resolveState(writer, request)
	if !ok {
		return
	}
	files := state.ListView()
	server.writeJSON(writer, http.StatusOK, ListResponse{
		Repository: state.Repository.FullName,
		Branch:     state.Branch,
		Query:      state.Query,
		Truncated:  state.Truncated,
		Summary:    render.SummarizeList(files),
		Files:      files,
	})
}

func (server Server) resolveState(writer http.ResponseWriter, request *http.Request) (viewer.State, bool) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return viewer.State{}, false
	}
	parameters := request.URL.Query()
	state, snapshotErr := server.config.Session.Snapshot(request.Context(), parameters.Get(queryParameterBranch))
	if snapshotErr != nil {
		server.config.Logger.Warn("request failed", zap.String("path", request.URL.Path), zap.Error(snapshotErr))
		server.writeJSON(writer, server.statusCodeFromError(snapshotErr), map[string]string{errorFieldName: snapshotErr.Error()})
		return viewer.State{}, false
	}
	return state.WithQuery(parameters.Get(queryParameterQuery)), true
}

func (server Server) writeJSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	var buffer bytes.Buffer
	if encodeErr := json.NewEncoder(&buffer).Encode(payload); encodeErr != nil {
		fallback := map[string]string{errorFieldName: fmt.Sprintf("encode response: %v", encodeErr)}
		writer.Header().Set(headerContentType, mimeTypeJSON)
		writer.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(writer).Encode(fallback)
		return
	}
	writer.Header().Set(headerContentType, mimeTypeJSON)
	writer.WriteHeader(statusCode)
	_, _ = writer.Write(buffer.Bytes())
}

func (server Server) statusCodeFromError(err error) int {
	var requestError *github.RequestError
	if errors.As(err, &requestError) {
		return requestError.StatusCode
	}
	if errors.Is(err, viewer.ErrNoBranch) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
