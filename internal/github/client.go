// Package github reads repository metadata, branches and recursive trees from the
// GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temirov/ghtree/internal/types"
)

const (
	defaultAPITimeout         = 30 * time.Second
	defaultAPIBaseURL         = "https://api.github.com"
	defaultUserAgent          = "ghtree"
	headerAuthorization       = "Authorization"
	headerAccept              = "Accept"
	headerUserAgent           = "User-Agent"
	headerGitHubAPIVersion    = "X-GitHub-Api-Version"
	acceptGitHubJSON          = "application/vnd.github+json"
	githubAPIVersionValue     = "2022-11-28"
	authorizationBearerPrefix = "Bearer "
	authorizationTokenPrefix  = "token "

	branchesPerPage       = "100"
	requestFailedFormat   = "GitHub request failed (%d %s)"
	decodeFailedFormat    = "decode %s: %w"
	queryParameterPerPage = "per_page"
	queryParameterRecurse = "recursive"
	recursiveQueryValue   = "1"
	pathSegmentRepos      = "repos"
	pathSegmentBranches   = "branches"
	pathSegmentGit        = "git"
	pathSegmentTrees      = "trees"
	pathSeparator         = "/"
)

var (
	errMissingOwner      = errors.New("repository owner is required")
	errMissingRepository = errors.New("repository name is required")
	errMissingBranch     = errors.New("branch name is required")
)

type httpClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// RequestError reports a non-successful GitHub response.
type RequestError struct {
	StatusCode int
	StatusText string
	URL        string
}

func (requestError *RequestError) Error() string {
	return fmt.Sprintf(requestFailedFormat, requestError.StatusCode, requestError.StatusText)
}

// Client performs read-only GitHub API calls. The zero value is not usable; call NewClient.
type Client struct {
	client                   httpClient
	apiBase                  string
	userAgent                string
	timeout                  time.Duration
	authorizationHeaderValue string
}

func NewClient(client httpClient) Client {
	if client == nil {
		client = &http.Client{Timeout: defaultAPITimeout}
	}
	return Client{
		client:    client,
		apiBase:   defaultAPIBaseURL,
		userAgent: defaultUserAgent,
		timeout:   defaultAPITimeout,
	}
}

func (client Client) WithAPIBase(base string) Client {
	if base == "" {
		return client
	}
	client.apiBase = strings.TrimRight(base, pathSeparator)
	return client
}

func (client Client) WithUserAgent(agent string) Client {
	if agent == "" {
		return client
	}
	client.userAgent = agent
	return client
}

func (client Client) WithTimeout(duration time.Duration) Client {
	if duration <= 0 {
		return client
	}
	client.timeout = duration
	if clientWithTimeout, ok := client.client.(*http.Client); ok {
		clientWithTimeout.Timeout = duration
	}
	return client
}

// WithAuthorizationToken configures the client to authenticate GitHub API calls.
func (client Client) WithAuthorizationToken(token string) Client {
	client.authorizationHeaderValue = formatAuthorizationHeaderValue(token)
	return client
}

// Repository fetches repository metadata.
func (client Client) Repository(ctx context.Context, owner string, repository string) (types.Repository, error) {
	var result types.Repository
	apiURL, buildErr := client.buildURL(owner, repository, nil, nil)
	if buildErr != nil {
		return result, buildErr
	}
	if getErr := client.getJSON(ctx, apiURL, &result); getErr != nil {
		return types.Repository{}, getErr
	}
	return result, nil
}

// Branches fetches the first page of up to 100 branches.
func (client Client) Branches(ctx context.Context, owner string, repository string) ([]types.Branch, error) {
	apiURL, buildErr := client.buildURL(owner, repository, []string{pathSegmentBranches}, url.Values{queryParameterPerPage: {branchesPerPage}})
	if buildErr != nil {
		return nil, buildErr
	}
	var branches []types.Branch
	if getErr := client.getJSON(ctx, apiURL, &branches); getErr != nil {
		return nil, getErr
	}
	return branches, nil
}

// Tree fetches the recursive listing of a branch.
func (client Client) Tree(ctx context.Context, owner string, repository string, branch string) (types.Listing, error) {
	var listing types.Listing
	if strings.TrimSpace(branch) == "" {
		return listing, errMissingBranch
	}
	segments := []string{pathSegmentGit, pathSegmentTrees}
	segments = append(segments, strings.Split(strings.Trim(branch, pathSeparator), pathSeparator)...)
	apiURL, buildErr := client.buildURL(owner, repository, segments, url.Values{queryParameterRecurse: {recursiveQueryValue}})
	if buildErr != nil {
		return listing, buildErr
	}
	if getErr := client.getJSON(ctx, apiURL, &listing); getErr != nil {
		return types.Listing{}, getErr
	}
	return listing, nil
}

func (client Client) getJSON(ctx context.Context, apiURL string, target interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if client.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.timeout)
		defer cancel()
	}
	request, requestErr := client.buildRequest(ctx, apiURL)
	if requestErr != nil {
		return requestErr
	}
	response, responseErr := client.client.Do(request)
	if responseErr != nil {
		return responseErr
	}
	defer response.Body.Close()
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return &RequestError{
			StatusCode: response.StatusCode,
			StatusText: http.StatusText(response.StatusCode),
			URL:        apiURL,
		}
	}
	if decodeErr := json.NewDecoder(response.Body).Decode(target); decodeErr != nil {
		return fmt.Errorf(decodeFailedFormat, apiURL, decodeErr)
	}
	return nil
}

func (client Client) buildRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if requestErr != nil {
		return nil, requestErr
	}
	if client.userAgent != "" {
		request.Header.Set(headerUserAgent, client.userAgent)
	}
	if client.authorizationHeaderValue != "" {
		request.Header.Set(headerAuthorization, client.authorizationHeaderValue)
	}
	request.Header.Set(headerAccept, acceptGitHubJSON)
	request.Header.Set(headerGitHubAPIVersion, githubAPIVersionValue)
	return request, nil
}

func (client Client) buildURL(owner string, repository string, segments []string, query url.Values) (string, error) {
	if owner == "" {
		return "", errMissingOwner
	}
	if repository == "" {
		return "", errMissingRepository
	}
	parsedURL, parseErr := url.Parse(client.apiBase)
	if parseErr != nil {
		return "", parseErr
	}
	var builder strings.Builder
	builder.WriteString(strings.TrimSuffix(parsedURL.Path, pathSeparator))
	for _, segment := range append([]string{pathSegmentRepos, owner, repository}, segments...) {
		if segment == "" {
			continue
		}
		builder.WriteString(pathSeparator)
		builder.WriteString(url.PathEscape(segment))
	}
	escapedPath := builder.String()
	unescapedPath, unescapeErr := url.PathUnescape(escapedPath)
	if unescapeErr != nil {
		return "", unescapeErr
	}
	parsedURL.Path = unescapedPath
	parsedURL.RawPath = escapedPath
	parsedURL.RawQuery = query.Encode()
	return parsedURL.String(), nil
}

func formatAuthorizationHeaderValue(rawToken string) string {
	trimmed := strings.TrimSpace(rawToken)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	bearerLower := strings.ToLower(authorizationBearerPrefix)
	tokenLower := strings.ToLower(authorizationTokenPrefix)
	if strings.HasPrefix(lower, bearerLower) || strings.HasPrefix(lower, tokenLower) {
		return trimmed
	}
	if strings.Contains(trimmed, ".") {
		return authorizationBearerPrefix + trimmed
	}
	return authorizationTokenPrefix + trimmed
}
