package github

import (
	"context"

	"github.com/temirov/ghtree/internal/types"
)

// RepositorySource binds a Client to one repository.
type RepositorySource struct {
	client     Client
	owner      string
	repository string
}

// ForRepository returns a source reading owner/repository through client.
func (client Client) ForRepository(owner string, repository string) RepositorySource {
	return RepositorySource{client: client, owner: owner, repository: repository}
}

func (source RepositorySource) Repository(ctx context.Context) (types.Repository, error) {
	return source.client.Repository(ctx, source.owner, source.repository)
}

func (source RepositorySource) Branches(ctx context.Context) ([]types.Branch, error) {
	return source.client.Branches(ctx, source.owner, source.repository)
}

func (source RepositorySource) Entries(ctx context.Context, branch string) (types.Listing, error) {
	return source.client.Tree(ctx, source.owner, source.repository, branch)
}
