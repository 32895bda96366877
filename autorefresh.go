package eventmap

import (
	"context"
	"time"

	"github.com/agentstation/eventmap/pkg/constants"
	"github.com/agentstation/eventmap/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoRefresher = (*Store)(nil)

// AutoRefresher provides controls for periodic catalog refreshes.
type AutoRefresher interface {
	// AutoRefreshOn begins refreshing every interval.
	AutoRefreshOn(interval time.Duration) error

	// AutoRefreshOff stops periodic refreshes.
	AutoRefreshOff() error
}

// AutoRefreshOn begins refreshing every interval until AutoRefreshOff or Close.
func (s *Store) AutoRefreshOn(interval time.Duration) error {
	if interval <= 0 {
		return &errors.ValidationError{
			Field:   "autoRefreshInterval",
			Value:   interval,
			Message: "refresh interval must be positive",
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.ErrClosed
	}
	s.stopAutoRefreshLocked()
	s.stopCh = make(chan struct{})
	s.refreshTicker = time.NewTicker(interval)
	ctx, cancel := context.WithCancel(s.ctx)
	s.refreshCancel = cancel
	ticker, stopCh := s.refreshTicker, s.stopCh
	s.mu.Unlock()

	go func(parentCtx context.Context) {
		for {
			select {
			case <-ticker.C:
				refreshCtx, refreshCancel := context.WithTimeout(parentCtx, constants.RefreshTimeout)
				err := s.Refresh(refreshCtx)
				refreshCancel()

				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, errors.ErrClosed) {
						return
					}
					// Refresh already logged the failure.
					continue
				}
			case <-parentCtx.Done():
				return
			case <-stopCh:
				return
			}
		}
	}(ctx)

	s.logger.Debug().Dur("interval", interval).Msg("Auto refresh on")
	return nil
}

// AutoRefreshOff stops periodic refreshes.
func (s *Store) AutoRefreshOff() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopAutoRefreshLocked()
	return nil
}

// stopAutoRefreshLocked ends the running refresh loop, if any.
func (s *Store) stopAutoRefreshLocked() {
	if s.refreshTicker != nil {
		s.refreshTicker.Stop()
		s.refreshTicker = nil
	}
	if s.refreshCancel != nil {
		s.refreshCancel()
		s.refreshCancel = nil
	}
	select {
	case <-s.stopCh:
		// Already closed
	default:
		close(s.stopCh)
	}
}
