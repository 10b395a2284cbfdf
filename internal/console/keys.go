package console

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pigeonsec/kestrel-admin/pkg/client"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

const (
	msgKeysUnavailable = "API key management endpoint not yet implemented"
	msgKeysFetch       = "Failed to fetch API keys"
	msgKeyCreated      = "API key created successfully"
	msgKeyCreate       = "Failed to create API key"
	msgKeyDeleted      = "API key deleted successfully"
	msgKeyDelete       = "Failed to delete API key"
	msgKeyDeletePrompt = "Delete this API key? This action cannot be undone."
	opListKeys         = "list api keys"
	opCreateKey        = "create api key"
	opDeleteKey        = "delete api key"
)

// ListAPIKeys replaces the key cache with the backend's listing. A backend
// without key management yields an informational notice and an empty list.
func (o *Orchestrator) ListAPIKeys(ctx context.Context) ([]domain.APIKey, error) {
	t := o.begin(KindAPIKeys, opListKeys)
	if _, ok := o.sess.Credential(); !ok {
		return nil, o.signedOut(t.epoch, t.op)
	}
	keys, err := o.backend.ListAPIKeys(ctx)
	if err != nil {
		if client.IsNotImplemented(err) {
			f := &Failure{Kind: FailureTransport, Op: t.op, Message: msgKeysUnavailable, Err: err}
			return nil, o.listFailed(t, f, SeverityInfo)
		}
		return nil, o.listFailed(t, classify(t.op, msgKeysFetch, err), SeverityError)
	}
	if keys == nil {
		keys = []domain.APIKey{}
	}
	if err := o.publish(t, func() { o.keys = keys }); err != nil {
		return nil, err
	}
	return slices.Clone(keys), nil
}

// CreateAPIKey issues a key and re-lists. The returned key carries the full
// secret; the listing only ever shows it masked.
func (o *Orchestrator) CreateAPIKey(ctx context.Context, name string, role domain.Role) (*domain.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, o.reject(precondition(opCreateKey, "name: required"))
	}
	if !domain.ValidRole(role) {
		return nil, o.reject(precondition(opCreateKey,
			fmt.Sprintf("role: must be one of %s", joinTypes(domain.Roles))))
	}
	var key *domain.APIKey
	err := o.mutate(ctx, opCreateKey, msgKeyCreate, func(ctx context.Context) error {
		var err error
		key, err = o.backend.CreateAPIKey(ctx, name, role)
		return err
	})
	if err != nil {
		return nil, err
	}
	o.succeed(msgKeyCreated)
	o.ListAPIKeys(ctx) //nolint:errcheck // reported through the notifier
	return key, nil
}

// DeleteAPIKey revokes the key with id after the operator confirms.
func (o *Orchestrator) DeleteAPIKey(ctx context.Context, id string, c Confirmer) error {
	if strings.TrimSpace(id) == "" {
		return o.reject(precondition(opDeleteKey, "id: required"))
	}
	if err := confirm(ctx, c, msgKeyDeletePrompt); err != nil {
		return err
	}
	err := o.mutate(ctx, opDeleteKey, msgKeyDelete, func(ctx context.Context) error {
		return o.backend.DeleteAPIKey(ctx, id)
	})
	if err != nil {
		return err
	}
	o.succeed(msgKeyDeleted)
	o.ListAPIKeys(ctx) //nolint:errcheck // reported through the notifier
	return nil
}
