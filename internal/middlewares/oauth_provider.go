package middlewares

import (
	"sort"

	"smartflow/internal/models"
)

//go:generate mockgen -source=oauth_provider.go -destination=../mocks/oauth.go -package=mocks

type OAuthProvider interface {
	Name() string
	StartLogin(ctx *AppContext) (string, error)
	HandleCallback(ctx *AppContext) (*models.Session, error)
}

// OAuthProviders is keyed by the lower-case provider name used in /auth/oauth/{provider}.
type OAuthProviders map[string]OAuthProvider

func (p OAuthProviders) Get(name string) (OAuthProvider, bool) {
	if p == nil {
		return nil, false
	}

	provider, ok := p[name]
	return provider, ok
}

func (p OAuthProviders) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
