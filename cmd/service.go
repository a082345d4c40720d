package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"trackpad/internal/actions"
	"trackpad/internal/api"
	"trackpad/internal/config"
	"trackpad/internal/input"
	"trackpad/internal/network"
	"trackpad/internal/osutils"
	"trackpad/internal/protocol"
	"trackpad/internal/server"
	"trackpad/internal/supervisor"
	"trackpad/internal/tray"
)

// service wires the gesture server, the beacon and the optional API.
type service struct {
	cfg        *config.Config
	logger     *slog.Logger
	dispatcher *actions.Dispatcher
	gesture    *server.Server
	api        *api.Server
	beacon     *network.Beacon

	clientsMu sync.Mutex
	onClients func(int)

	wg sync.WaitGroup
}

func newService(cfg *config.Config, inj input.Injector, logger *slog.Logger) *service {
	s := &service{
		cfg:        cfg,
		logger:     logger,
		dispatcher: actions.NewDispatcher(inj, logger),
	}

	s.gesture = server.New(cfg.GestureAddr(), s.dispatcher,
		server.WithCooldown(cfg.Cooldown),
		server.WithIdleTimeout(cfg.IdleTimeout),
		server.WithReadBufferSize(cfg.ReadBufferSize),
		server.WithLogger(logger),
		server.WithSessionHook(s.clientsChanged),
	)

	if cfg.APIEnabled {
		s.api = api.NewServer(cfg.APIAddr(), s.dispatcher, s.status,
			api.WithCooldown(cfg.Cooldown),
			api.WithLogger(logger),
		)
	}
	return s
}

// start binds every socket, then runs the loops under supervision. A bind
// failure is returned and nothing is left running.
func (s *service) start(ctx context.Context) error {
	if err := s.gesture.Listen(); err != nil {
		return err
	}

	// announce the port actually bound
	port := s.cfg.GesturePort
	if addr, ok := s.gesture.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	s.beacon = network.NewBeacon(s.cfg.Name, port, s.cfg.BroadcastTarget(),
		network.WithInterval(s.cfg.BeaconInterval),
		network.WithLogger(s.logger),
	)
	if err := s.beacon.Open(); err != nil {
		s.gesture.Close()
		return err
	}

	if s.api != nil {
		if err := s.api.Listen(); err != nil {
			s.beacon.Close()
			s.gesture.Close()
			return err
		}
	}

	if s.cfg.FirewallRule {
		go func() {
			rules := osutils.ServiceRules(port, s.cfg.DiscoveryPort)
			if err := osutils.EnsureFirewallRules(rules, s.logger); err != nil {
				s.logger.Warn("firewall_rule_failed", "error", err)
			}
		}()
	}

	opts := supervisor.DefaultOptions()
	opts.Logger = s.logger
	s.spawn(ctx, "gesture_server", s.gesture.Serve, opts)
	s.spawn(ctx, "beacon", s.beacon.Run, opts)
	if s.api != nil {
		s.spawn(ctx, "api", s.api.Serve, opts)
	}

	s.logger.Info("service_started",
		"name", s.cfg.Name,
		"endpoint", s.endpoint(),
		"platform", s.dispatcher.Platform().String(),
		"version", version,
	)
	return nil
}

func (s *service) spawn(ctx context.Context, name string, task supervisor.Task, opts supervisor.Options) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		supervisor.Run(ctx, name, task, opts)
	}()
}

// wait blocks until every loop has stopped.
func (s *service) wait() {
	s.wg.Wait()
}

func (s *service) endpoint() string {
	return s.beacon.Endpoint().Address()
}

func (s *service) status() protocol.Status {
	ep := s.beacon.Endpoint()
	return protocol.Status{
		Name:           ep.Name,
		IP:             ep.IP,
		GesturePort:    ep.Port,
		DiscoveryPort:  s.cfg.DiscoveryPort,
		ActiveSessions: s.gesture.ActiveSessions(),
		Platform:       s.dispatcher.Platform().String(),
		Version:        version,
	}
}

func (s *service) setClientsHook(fn func(int)) {
	s.clientsMu.Lock()
	s.onClients = fn
	s.clientsMu.Unlock()
}

func (s *service) clientsChanged(n int) {
	s.clientsMu.Lock()
	fn := s.onClients
	s.clientsMu.Unlock()
	if fn != nil {
		fn(n)
	}
}

// runService serves until SIGINT, SIGTERM or the tray Quit item.
func runService(parent context.Context, cfg *config.Config, inj input.Injector, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := newService(cfg, inj, logger)
	if err := svc.start(ctx); err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	if cfg.TrayEnabled && tray.Supported() {
		t := tray.New(stop)
		t.SetEndpoint(svc.endpoint())
		svc.setClientsHook(t.SetClients)
		go func() {
			<-ctx.Done()
			t.Stop()
		}()
		t.Run()
		stop()
	} else {
		logger.Info("service_running", "hint", "press Ctrl+C to stop")
		<-ctx.Done()
	}

	logger.Info("shutting_down")
	svc.wait()
	return nil
}
