package console

import (
	"context"
	"sync"
)

// Stats are the dashboard counters.
type Stats struct {
	Indicators int
	Feeds      int
	APIKeys    int
}

// Stats lists all three collections concurrently and counts them. Individual
// list failures are reported as usual and count as zero; only an auth
// failure is returned.
func (o *Orchestrator) Stats(ctx context.Context) (Stats, error) {
	if _, ok := o.sess.Credential(); !ok {
		return Stats{}, o.signedOut(o.sess.Epoch(), "dashboard stats")
	}

	var (
		wg   sync.WaitGroup
		s    Stats
		errs [kindCount]error
	)
	wg.Add(int(kindCount))
	go func() {
		defer wg.Done()
		items, err := o.ListIndicators(ctx)
		s.Indicators, errs[KindIndicators] = len(items), err
	}()
	go func() {
		defer wg.Done()
		feeds, err := o.ListFeeds(ctx)
		s.Feeds, errs[KindFeeds] = len(feeds), err
	}()
	go func() {
		defer wg.Done()
		keys, err := o.ListAPIKeys(ctx)
		s.APIKeys, errs[KindAPIKeys] = len(keys), err
	}()
	wg.Wait()

	for _, err := range errs {
		if IsKind(err, FailureAuth) {
			return Stats{}, err
		}
	}
	return s, nil
}
