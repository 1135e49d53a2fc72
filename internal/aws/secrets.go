package aws

import (
	"context"
	"fmt"
	"sort"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretValueGetter is the Secrets Manager call the credential store needs.
type SecretValueGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// CredentialStore supplies startup credentials (database URL, JWT secret,
// LLM key) that take precedence over the environment. Each secret is fetched
// at most once per process.
type CredentialStore struct {
	api     SecretValueGetter
	mu      sync.Mutex
	fetched map[string]string
}

func NewCredentialStore(cfg sdkaws.Config) *CredentialStore {
	return NewCredentialStoreWithAPI(secretsmanager.NewFromConfig(cfg))
}

func NewCredentialStoreWithAPI(api SecretValueGetter) *CredentialStore {
	return &CredentialStore{api: api, fetched: map[string]string{}}
}

// Credential returns the string value of secret name.
func (s *CredentialStore) Credential(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.fetched[name]; ok {
		return v, nil
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		return "", fmt.Errorf("read credential %s: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("credential %s is binary", name)
	}
	s.fetched[name] = *out.SecretString
	return *out.SecretString, nil
}

// Apply writes each readable, non-empty secret over its target field and
// returns the sorted names it applied. Unreadable secrets leave the field
// as it was.
func (s *CredentialStore) Apply(ctx context.Context, targets map[string]*string) []string {
	var applied []string
	for name, dst := range targets {
		v, err := s.Credential(ctx, name)
		if err != nil || v == "" {
			continue
		}
		*dst = v
		applied = append(applied, name)
	}
	sort.Strings(applied)
	return applied
}
