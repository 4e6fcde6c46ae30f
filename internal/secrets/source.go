package secrets

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Source fetches named secrets from a managed secret service. It exists as an
// interface so the provisioner can be exercised without network access.
type Source interface {
	AccessLatest(ctx context.Context, projectID string, name string) (string, error)
}

// GoogleSource reads secrets from Google Secret Manager, always at the latest
// version.
type GoogleSource struct {
	client *secretmanager.Client
}

func NewGoogleSource(ctx context.Context) (*GoogleSource, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secretmanager client: %w", err)
	}
	return &GoogleSource{client: client}, nil
}

func (s *GoogleSource) AccessLatest(ctx context.Context, projectID string, name string) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name),
	})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

func (s *GoogleSource) Close() error {
	return s.client.Close()
}
