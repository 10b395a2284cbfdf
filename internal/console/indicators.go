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
	msgIndicatorsFetch   = "Failed to fetch IOCs"
	msgIndicatorAdded    = "IOC added successfully"
	msgIndicatorAdd      = "Failed to add IOC"
	msgIndicatorNoFeed   = "Cannot delete IOC: feed information missing"
	msgIndicatorDeleted  = "IOC deleted successfully"
	msgIndicatorDelete   = "Failed to delete IOC"
	opListIndicators     = "list indicators"
	opCreateIndicator    = "create indicator"
	opDeleteIndicator    = "delete indicator"
	defaultIndicatorType = domain.IndicatorDomain
)

// IndicatorDraft is what the operator fills in to submit an IOC. Zero values
// for Type, Category and AccessLevel take the form defaults.
type IndicatorDraft struct {
	Type        domain.IndicatorType
	Value       string
	HashType    string
	Category    string
	Feed        string
	Comment     string
	AccessLevel domain.AccessLevel
	ThreatActor string
	Malware     string
	Campaign    string
	Tags        []string
}

// BuildIndicatorRequest maps a draft onto the backend payload, placing the
// value in the one field its type selects. A failed check is a
// FailurePrecondition naming the offending field.
func BuildIndicatorRequest(d IndicatorDraft) (client.CreateIndicatorRequest, error) {
	if d.Type == "" {
		d.Type = defaultIndicatorType
	}
	if d.Category == "" {
		d.Category = domain.DefaultCategory
	}
	if d.AccessLevel == "" {
		d.AccessLevel = domain.DefaultAccessLevel
	}
	value := strings.TrimSpace(d.Value)
	feed := strings.TrimSpace(d.Feed)

	switch {
	case !domain.ValidIndicatorType(d.Type):
		return client.CreateIndicatorRequest{}, precondition(opCreateIndicator,
			fmt.Sprintf("type: must be one of %s", joinTypes(domain.IndicatorTypes)))
	case value == "":
		return client.CreateIndicatorRequest{}, precondition(opCreateIndicator, "value: required")
	case feed == "":
		return client.CreateIndicatorRequest{}, precondition(opCreateIndicator, "feed: required")
	case !domain.ValidAccessLevel(d.AccessLevel):
		return client.CreateIndicatorRequest{}, precondition(opCreateIndicator,
			fmt.Sprintf("access_level: must be one of %s", joinTypes(domain.AccessLevels)))
	case d.HashType != "" && d.Type != domain.IndicatorHash:
		return client.CreateIndicatorRequest{}, precondition(opCreateIndicator, "hash_type: only valid for hash indicators")
	}

	req := client.CreateIndicatorRequest{
		Category:    d.Category,
		Feed:        feed,
		Comment:     d.Comment,
		AccessLevel: string(d.AccessLevel),
		ThreatActor: d.ThreatActor,
		Malware:     d.Malware,
		Campaign:    d.Campaign,
		Tags:        d.Tags,
	}
	switch d.Type {
	case domain.IndicatorDomain:
		req.Domain = value
	case domain.IndicatorIP:
		req.IP = value
	case domain.IndicatorURL:
		req.URL = value
	case domain.IndicatorHash:
		req.Hash = value
		req.HashType = d.HashType
	case domain.IndicatorEmail:
		req.Email = value
	}
	return req, nil
}

// ListIndicators replaces the indicator cache with the backend's listing,
// honouring the feed filter.
func (o *Orchestrator) ListIndicators(ctx context.Context) ([]domain.Indicator, error) {
	t := o.begin(KindIndicators, opListIndicators)
	if _, ok := o.sess.Credential(); !ok {
		return nil, o.signedOut(t.epoch, t.op)
	}
	list, err := o.backend.ListIndicators(ctx, o.IndicatorFeedFilter())
	if err != nil {
		return nil, o.listFailed(t, classify(t.op, msgIndicatorsFetch, err), SeverityError)
	}
	items := list.IOCs
	if items == nil {
		items = []domain.Indicator{}
	}
	if err := o.publish(t, func() { o.indicators = items }); err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// CreateIndicator submits a draft and re-lists on success.
func (o *Orchestrator) CreateIndicator(ctx context.Context, d IndicatorDraft) error {
	req, err := BuildIndicatorRequest(d)
	if err != nil {
		f, _ := AsFailure(err)
		return o.reject(f)
	}
	err = o.mutate(ctx, opCreateIndicator, msgIndicatorAdd, func(ctx context.Context) error {
		return o.backend.CreateIndicator(ctx, req)
	})
	if err != nil {
		return err
	}
	o.succeed(msgIndicatorAdded)
	o.ListIndicators(ctx) //nolint:errcheck // reported through the notifier
	return nil
}

// DeleteIndicator removes ind from its feed after the operator confirms. An
// indicator without a feed is refused before anything else happens.
func (o *Orchestrator) DeleteIndicator(ctx context.Context, ind domain.Indicator, c Confirmer) error {
	if !ind.Deletable() {
		return o.reject(precondition(opDeleteIndicator, msgIndicatorNoFeed))
	}
	if err := confirm(ctx, c, fmt.Sprintf("Delete IOC %s?", ind.Value)); err != nil {
		return err
	}
	err := o.mutate(ctx, opDeleteIndicator, msgIndicatorDelete, func(ctx context.Context) error {
		return o.backend.DeleteIndicator(ctx, ind.Value, ind.Feed)
	})
	if err != nil {
		return err
	}
	o.succeed(msgIndicatorDeleted)
	o.ListIndicators(ctx) //nolint:errcheck // reported through the notifier
	return nil
}

func joinTypes[T ~string](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
