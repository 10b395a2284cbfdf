package console

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

const (
	msgFeedsFetch   = "Failed to fetch feeds"
	msgFeedUpdated  = "Feed permissions updated"
	msgFeedUpdate   = "Failed to update feed permissions"
	opListFeeds     = "list feeds"
	opSetFeedAccess = "set feed access level"
)

// ListFeeds replaces the feed cache with the backend's listing.
func (o *Orchestrator) ListFeeds(ctx context.Context) ([]domain.Feed, error) {
	t := o.begin(KindFeeds, opListFeeds)
	if _, ok := o.sess.Credential(); !ok {
		return nil, o.signedOut(t.epoch, t.op)
	}
	feeds, err := o.backend.ListFeeds(ctx)
	if err != nil {
		return nil, o.listFailed(t, classify(t.op, msgFeedsFetch, err), SeverityError)
	}
	if feeds == nil {
		feeds = []domain.Feed{}
	}
	if err := o.publish(t, func() { o.feeds = feeds }); err != nil {
		return nil, err
	}
	return slices.Clone(feeds), nil
}

// SetFeedAccessLevel asks the backend to move a feed to level, then re-lists
// feeds and returns the feed as the backend now reports it. The returned tier
// is the confirmed one, which need not equal level.
//
// No local role check is made; an operator without the right gets the
// backend's rejection.
func (o *Orchestrator) SetFeedAccessLevel(ctx context.Context, name string, level domain.AccessLevel) (domain.Feed, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Feed{}, o.reject(precondition(opSetFeedAccess, "feed: required"))
	}
	if !domain.ValidAccessLevel(level) {
		return domain.Feed{}, o.reject(precondition(opSetFeedAccess,
			fmt.Sprintf("access_level: must be one of %s", joinTypes(domain.AccessLevels))))
	}
	err := o.mutate(ctx, opSetFeedAccess, msgFeedUpdate, func(ctx context.Context) error {
		return o.backend.SetFeedAccessLevel(ctx, name, level)
	})
	if err != nil {
		return domain.Feed{}, err
	}
	o.succeed(msgFeedUpdated)

	feeds, err := o.ListFeeds(ctx)
	if err != nil {
		return domain.Feed{}, err
	}
	for _, f := range feeds {
		if f.Name == name {
			return f, nil
		}
	}
	return domain.Feed{}, fmt.Errorf("console.SetFeedAccessLevel: feed %q missing from listing", name)
}
