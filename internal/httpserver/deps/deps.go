package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tabkeep/tabkeepd/internal/account"
	"github.com/tabkeep/tabkeepd/internal/bookmarks"
	"github.com/tabkeep/tabkeepd/internal/browser"
	"github.com/tabkeep/tabkeepd/internal/logger"
	"github.com/tabkeep/tabkeepd/internal/relay"
	"github.com/tabkeep/tabkeepd/internal/scanner"
	"github.com/tabkeep/tabkeepd/internal/session"
	"github.com/tabkeep/tabkeepd/internal/store"
	"github.com/tabkeep/tabkeepd/internal/tabs"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedOrigins []string      // origins allowed on CORS and the relay ingress
	RedisClient    *redis.Client // nil in tests; readyz reports ready without it

	Backbone  store.Backbone     // shared key-value storage
	Relay     *relay.Relay       // auth message relay
	Bus       *relay.Bus         // in-process broadcast channel
	Tracker   *tabs.Tracker      // tab lifecycle timers
	Scanner   *scanner.Scanner   // inactivity scanner (toggle notifications)
	Bookmarks *bookmarks.Service // saved tab snapshots
	Accounts  *account.Store     // sync accounts (nil disables account routes)
	Host      browser.Host       // live browser connection (nil in tests)
	Watcher   *session.Watcher   // popup-style session view (nil falls back to the backbone)
}
