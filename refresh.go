package eventmap

import (
	"context"
	"time"

	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/errors"
)

// Refresher loads the catalog on demand.
type Refresher interface {
	// Refresh fetches the full event collection and installs it.
	Refresh(ctx context.Context) error
}

var _ Refresher = (*Store)(nil)

// Refresh fetches events and replaces the catalog with them. Loading is
// set for the duration of the fetch and always cleared once no refresh is
// in flight. On failure the previous events are kept, the error is logged
// and returned, and the store stays usable. The first refresh to settle
// ends the bootstrap phase and allows URL writes.
func (s *Store) Refresh(ctx context.Context) error {
	var (
		ticket catalog.Ticket
		closed bool
	)
	s.commit(func() ChangeKind {
		if s.closed {
			closed = true
			return 0
		}
		wasLoading := s.catalog.Loading()
		ticket = s.catalog.Begin()
		if wasLoading {
			return 0
		}
		return LoadingChanged
	})
	if closed {
		return errors.ErrClosed
	}

	logger := s.logger.With().
		Str("source", s.catalog.Source()).
		Uint64("generation", ticket.Generation).
		Logger()
	logger.Debug().Msg("Fetching events")

	events, fetchErr := s.options.fetcher.Fetch(ctx)
	if fetchErr == nil {
		if err := catalog.ValidateAll(events); err != nil {
			events, fetchErr = nil, err
		}
	}

	var out catalog.Outcome
	s.commit(func() ChangeKind {
		out = s.catalog.Settle(ticket, events, fetchErr)
		return s.settledLocked(out)
	})

	took := time.Since(ticket.StartedAt)
	switch {
	case out.Superseded:
		logger.Debug().Dur("took", took).Msg("Discarded superseded refresh")
	case out.Err != nil:
		logger.Error().Err(out.Err).Dur("took", took).Msg("Catalog refresh failed")
	default:
		logger.Info().Int("events", len(events)).Dur("took", took).Msg("Catalog refreshed")
	}
	return out.Err
}

// settledLocked applies the consequences of a settled refresh to the
// derived state: the filtered view, the selection, the phase and the latch.
func (s *Store) settledLocked(out catalog.Outcome) ChangeKind {
	var kind ChangeKind
	if !s.catalog.Loading() {
		kind |= LoadingChanged
	}
	if out.First && s.sync.MarkReady() {
		s.logger.Debug().Msg("Route sync ready")
	}

	if out.Applied {
		kind |= EventsChanged
		s.recomputeLocked()
		if prev := s.tracker.Selected(); prev != nil {
			if s.tracker.Reconcile(s.catalog) {
				s.logger.Debug().Msg("Selected event dropped by refresh")
				s.sync.MarkDirty()
				kind |= SelectionChanged
			} else if *s.tracker.Selected() != *prev {
				kind |= SelectionChanged
			}
		}
	}

	if s.catalogReadyLocked() {
		kind |= s.consumeLatchLocked()
	}
	return kind
}
