package scanner

import (
	"context"
	"time"

	"github.com/tabkeep/tabkeepd/internal/browser"
	"github.com/tabkeep/tabkeepd/internal/logger"
	"github.com/tabkeep/tabkeepd/internal/notify"
	"github.com/tabkeep/tabkeepd/internal/tabs"
)

const (
	// DefaultInterval is the pause between inactivity scans.
	DefaultInterval = 5 * time.Minute
	// DefaultThreshold is the inactivity duration after which a tab
	// qualifies for auto-close.
	DefaultThreshold = 2 * time.Hour
)

// Settings is the slice of the backbone the scanner consults.
type Settings interface {
	AutoCloseEnabled(ctx context.Context) (bool, error)
	SetAutoCloseEnabled(ctx context.Context, enabled bool) error
}

// Scanner periodically closes tabs that have been inactive for longer
// than the threshold. A scan never touches the active tab, pinned tabs,
// or tabs without a tracked timer.
type Scanner struct {
	host      browser.Host
	tracker   *tabs.Tracker
	settings  Settings
	notifier  notify.Notifier
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time

	toggleCh chan bool
	stopCh   chan struct{}
}

// New creates a scanner. now is injectable for tests; nil means
// time.Now.
func New(
	host browser.Host,
	tracker *tabs.Tracker,
	settings Settings,
	notifier notify.Notifier,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
	now func() time.Time,
) *Scanner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if now == nil {
		now = time.Now
	}

	return &Scanner{
		host:      host,
		tracker:   tracker,
		settings:  settings,
		notifier:  notifier,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       now,
		toggleCh:  make(chan bool, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic scan loop.
func (s *Scanner) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Scan(ctx); err != nil {
					s.logger.Error("inactivity scan failed", logger.Error(err))
				}
			case enabled := <-s.toggleCh:
				// A toggle restarts the cadence so the first scan after
				// re-enabling happens a full interval from now, not
				// mid-phase.
				ticker.Reset(s.interval)
				s.logger.Info("auto-close toggled", logger.Bool("enabled", enabled))
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the scan loop.
func (s *Scanner) Stop() {
	close(s.stopCh)
}

// Toggle persists the auto-close flag and resets the scan cadence.
func (s *Scanner) Toggle(ctx context.Context, enabled bool) error {
	if err := s.settings.SetAutoCloseEnabled(ctx, enabled); err != nil {
		return err
	}
	s.NotifyToggle(enabled)
	return nil
}

// NotifyToggle tells the scanner the auto-close setting changed. The
// setting itself lives in the backbone; this only resets the cadence.
// Never blocks.
func (s *Scanner) NotifyToggle(enabled bool) {
	select {
	case s.toggleCh <- enabled:
	default:
	}
}

// Scan runs one inactivity pass. The enabled check comes first so a
// disabled scanner does not touch the browser at all.
func (s *Scanner) Scan(ctx context.Context) error {
	enabled, err := s.settings.AutoCloseEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		s.logger.Debug("auto-close disabled, skipping scan")
		return nil
	}

	open, err := s.host.List(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	closed := 0

	for _, tab := range open {
		if tab.Active || tab.Pinned {
			continue
		}

		timer, tracked := s.tracker.Lookup(tab.ID)
		if !tracked {
			// Unknown tabs become eligible only after the tracker has
			// observed them again.
			continue
		}

		inactive := now.Sub(timer.LastActive)
		if inactive <= s.threshold {
			continue
		}

		if err := s.host.Close(ctx, tab.ID); err != nil {
			s.logger.Warn("failed to close tab",
				logger.String("tab_id", string(tab.ID)),
				logger.Error(err))
			continue
		}

		s.tracker.OnTabRemoved(tab.ID)
		s.logger.Info("closed inactive tab",
			logger.String("tab_id", string(tab.ID)),
			logger.String("url", tab.URL),
			logger.Duration("inactive_for", inactive))
		closed++
	}

	if closed > 0 {
		// One notification per batch.
		if err := s.notifier.Notify(ctx, notify.ClosedTabsMessage(closed)); err != nil {
			s.logger.Warn("notification failed", logger.Error(err))
		}
		s.logger.Info("inactivity scan completed", logger.Int("tabs_closed", closed))
	} else {
		s.logger.Debug("no inactive tabs to close")
	}

	return nil
}
