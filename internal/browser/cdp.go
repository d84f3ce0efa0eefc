package browser

import (
	"context"
	"fmt"
	"time"

	cdp "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/logger"
)

const targetTypePage = "page"

// CDPHost attaches to a running browser over the DevTools protocol and
// exposes its pages as tabs. "Active" is approximated by the target
// being attached to by a client; the protocol has no focused-tab bit at
// the browser level.
type CDPHost struct {
	url    string
	logger logger.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	router *eventRouter
}

// NewCDPHost creates a host for the browser behind the given DevTools
// URL (ex: "ws://localhost:9222").
func NewCDPHost(url string, log logger.Logger) *CDPHost {
	return &CDPHost{
		url:    url,
		logger: log,
	}
}

// Connect establishes the browser connection and starts routing target
// discovery events into sink. sink may be nil to disable the feed.
func (h *CDPHost) Connect(ctx context.Context, sink EventSink) error {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, h.url)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to attach to browser at %s: %w", h.url, err)
	}

	h.allocCancel = allocCancel
	h.browserCtx = browserCtx
	h.browserCancel = browserCancel

	if sink != nil {
		h.router = newEventRouter(sink)
		chromedp.ListenBrowser(browserCtx, h.router.route)
		if err := chromedp.Run(browserCtx, target.SetDiscoverTargets(true)); err != nil {
			return fmt.Errorf("failed to enable target discovery: %w", err)
		}
	}

	h.logger.Info("attached to browser", logger.String("cdp_url", h.url))
	return nil
}

// List returns all open page targets as tabs.
func (h *CDPHost) List(ctx context.Context) ([]domain.Tab, error) {
	if h.browserCtx == nil {
		return nil, fmt.Errorf("no browser connection")
	}

	var targets []*target.Info
	err := chromedp.Run(h.browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		targets, err = target.GetTargets().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	tabs := make([]domain.Tab, 0, len(targets))
	for _, t := range targets {
		if t.Type != targetTypePage {
			continue
		}
		tabs = append(tabs, domain.Tab{
			ID:     domain.TabID(t.TargetID),
			Title:  t.Title,
			URL:    t.URL,
			Active: t.Attached,
		})
	}
	return tabs, nil
}

// Close closes one page target. A target that no longer exists is
// treated as already closed.
func (h *CDPHost) Close(ctx context.Context, id domain.TabID) error {
	if h.browserCtx == nil {
		return fmt.Errorf("no browser connection")
	}

	closeCtx, cancel := context.WithTimeout(h.browserCtx, 5*time.Second)
	defer cancel()

	err := target.CloseTarget(target.ID(id)).
		Do(cdp.WithExecutor(closeCtx, chromedp.FromContext(closeCtx).Browser))
	if err != nil {
		h.logger.Debug("close target",
			logger.String("tab_id", string(id)),
			logger.Error(err))
	}
	return nil
}

// Disconnect tears down the browser connection. The browser itself
// keeps running.
func (h *CDPHost) Disconnect() {
	if h.browserCancel != nil {
		h.browserCancel()
	}
	if h.allocCancel != nil {
		h.allocCancel()
	}
}

// eventRouter translates target discovery events into tab lifecycle
// calls. It remembers the last URL per target so navigations can be
// told apart from title or attachment changes.
type eventRouter struct {
	sink EventSink

	lastURL      map[domain.TabID]string
	lastAttached map[domain.TabID]bool
}

func newEventRouter(sink EventSink) *eventRouter {
	return &eventRouter{
		sink:         sink,
		lastURL:      make(map[domain.TabID]string),
		lastAttached: make(map[domain.TabID]bool),
	}
}

// route runs on chromedp's event goroutine; it must not block.
func (er *eventRouter) route(ev interface{}) {
	switch e := ev.(type) {
	case *target.EventTargetCreated:
		if e.TargetInfo.Type != targetTypePage {
			return
		}
		id := domain.TabID(e.TargetInfo.TargetID)
		er.lastURL[id] = e.TargetInfo.URL
		er.lastAttached[id] = e.TargetInfo.Attached
		er.sink.OnTabCreated(id)

	case *target.EventTargetDestroyed:
		id := domain.TabID(e.TargetID)
		delete(er.lastURL, id)
		delete(er.lastAttached, id)
		er.sink.OnTabRemoved(id)

	case *target.EventTargetInfoChanged:
		if e.TargetInfo.Type != targetTypePage {
			return
		}
		id := domain.TabID(e.TargetInfo.TargetID)

		prevURL, known := er.lastURL[id]
		urlChanged := known && prevURL != e.TargetInfo.URL
		er.lastURL[id] = e.TargetInfo.URL

		if e.TargetInfo.Attached && !er.lastAttached[id] {
			er.sink.OnTabActivated(id)
		}
		er.lastAttached[id] = e.TargetInfo.Attached

		if known {
			er.sink.OnTabUpdated(id, urlChanged)
		}
	}
}
