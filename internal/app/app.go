package app

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/scrumdeck/internal/config"
	"github.com/abrezinsky/scrumdeck/internal/deck"
	"github.com/abrezinsky/scrumdeck/internal/engine"
	"github.com/abrezinsky/scrumdeck/internal/handlers"
	"github.com/abrezinsky/scrumdeck/internal/logger"
	"github.com/abrezinsky/scrumdeck/internal/store"
	"github.com/abrezinsky/scrumdeck/internal/store/memory"
	"github.com/abrezinsky/scrumdeck/internal/store/sqlite"
	"github.com/abrezinsky/scrumdeck/internal/websocket"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	store    store.Store
	engine   *engine.Engine
	handlers *handlers.Handlers
	closer   func() error
}

// New creates and initializes a new application instance. An empty DBPath
// selects the in-memory session store; otherwise the sqlite adapter is
// opened at that path.
func New(log logger.Logger, cfg *config.Config) (*App, error) {
	var (
		st     store.Store
		closer func() error
	)
	if cfg.DBPath == "" {
		st = memory.New()
		closer = func() error { return nil }
		log.Info("Using in-memory session store")
	} else {
		sqlStore, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		st = sqlStore
		closer = sqlStore.Close
		log.Info("Using sqlite session store", "path", cfg.DBPath)
	}

	eng := engine.New(log, st)
	decks := deck.NewCatalog()
	hub := websocket.New(log, st)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s%s", getPreferredIP(realNetworkProvider{}), cfg.HTTPAddr)
	}

	h := handlers.New(log, eng, st, decks, hub, baseURL)

	return &App{
		log:      log,
		cfg:      cfg,
		store:    st,
		engine:   eng,
		handlers: h,
		closer:   closer,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Engine returns the session synchronization engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Store returns the session store adapter.
func (a *App) Store() store.Store {
	return a.store
}

// Close performs graceful shutdown of app resources
func (a *App) Close() error {
	return a.closer()
}

// Run starts the HTTP server
func (a *App) Run() error {
	a.log.Info("Server starting", "addr", a.cfg.HTTPAddr, "base_url", a.handlers.BaseURL)
	return http.ListenAndServe(a.cfg.HTTPAddr, a.Router())
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access, so QR share
// links work from other devices on the network.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
