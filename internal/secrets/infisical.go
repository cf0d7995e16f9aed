package secrets

import (
	"context"
	"fmt"
	"os"

	infisical "github.com/infisical/go-sdk"
)

const defaultSiteURL = "https://app.infisical.com"

// InfisicalSource retrieves credentials from an Infisical project instead of
// generating them, for operators who keep provisioning secrets centrally.
// Machine identity client ID/secret come from the environment
// (INFISICAL_CLIENT_ID / INFISICAL_CLIENT_SECRET).
type InfisicalSource struct {
	client      infisical.InfisicalClientInterface
	projectID   string
	environment string
}

func NewInfisicalSource(ctx context.Context, projectID, environment string) (*InfisicalSource, error) {
	clientID := os.Getenv("INFISICAL_CLIENT_ID")
	clientSecret := os.Getenv("INFISICAL_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("INFISICAL_CLIENT_ID and INFISICAL_CLIENT_SECRET must be set")
	}

	siteURL := os.Getenv("INFISICAL_SITE_URL")
	if siteURL == "" {
		siteURL = defaultSiteURL
	}

	client := infisical.NewInfisicalClient(ctx, infisical.Config{
		SiteUrl:          siteURL,
		AutoTokenRefresh: true,
		SilentMode:       true,
	})

	if _, err := client.Auth().UniversalAuthLogin(clientID, clientSecret); err != nil {
		return nil, fmt.Errorf("infisical authentication failed: %v", err)
	}

	return &InfisicalSource{
		client:      client,
		projectID:   projectID,
		environment: environment,
	}, nil
}

// Retrieve fetches one secret by key from the project root path.
func (s *InfisicalSource) Retrieve(key string) (Credential, error) {
	secret, err := s.client.Secrets().Retrieve(infisical.RetrieveSecretOptions{
		SecretKey:   key,
		Environment: s.environment,
		ProjectID:   s.projectID,
		SecretPath:  "/",
	})
	if err != nil {
		return Credential{}, fmt.Errorf("error retrieving secret %s: %v", key, err)
	}
	return Credential{Name: key, Value: secret.SecretValue}, nil
}
