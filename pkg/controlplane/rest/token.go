package rest

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/pkg/errors"
)

// ManagementScope is the token scope of the management control plane.
const ManagementScope = "https://management.azure.com/.default"

// TokenSource provides bearer tokens for control plane requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// CredentialTokenSource gets tokens from an Azure credential. The credential caches
// tokens and refreshes them before expiry.
type CredentialTokenSource struct {
	Credential azcore.TokenCredential
	Scopes     []string
}

func (s *CredentialTokenSource) Token(ctx context.Context) (string, error) {
	scopes := s.Scopes
	if len(scopes) == 0 {
		scopes = []string{ManagementScope}
	}

	tok, err := s.Credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return "", errors.Wrap(err, "unable to get token from credential")
	}

	return tok.Token, nil
}

// NewDefaultCredentialTokenSource uses the default Azure credential chain
// (environment, workload identity, managed identity, Azure CLI).
func NewDefaultCredentialTokenSource() (*CredentialTokenSource, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating default Azure credential")
	}

	return &CredentialTokenSource{Credential: cred}, nil
}
