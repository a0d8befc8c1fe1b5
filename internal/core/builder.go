package core

import (
	"paizer/config"
	"paizer/internal/conn"
	"paizer/internal/metrics"
	"paizer/internal/transport"
	"paizer/util"
)

// Build constructs the appropriate Mode from the given configuration.
// ui is the chat console; relay mode does not use it.
func Build(cfg *config.Config, logger *util.Logger, ui UI) (Mode, error) {
	if cfg.Listen {
		return buildRelay(cfg, logger), nil
	}
	return buildChat(cfg, logger, ui), nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildChat(cfg *config.Config, logger *util.Logger, ui UI) Mode {
	m := metrics.New()
	return &ChatMode{
		Connector: &conn.Manager{
			Dialer:  buildDialer(cfg, logger),
			Logger:  logger,
			Metrics: m,
		},
		UI:        ui,
		Nickname:  cfg.Nickname,
		Server:    cfg.Server,
		AssumeYes: cfg.AssumeYes,
		Logger:    logger,
		Metrics:   m,
		Stats:     cfg.Stats,
	}
}

func buildRelay(cfg *config.Config, logger *util.Logger) Mode {
	bind := cfg.BindAddress
	if bind == "" {
		bind = config.DefaultBindAddress
	}
	port := cfg.LocalPort
	if port == 0 {
		port = config.DefaultPort
	}
	return &RelayMode{
		Address: util.FormatAddr(bind, port),
		Logger:  logger,
		Metrics: metrics.New(),
	}
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&transport.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.Timeout,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.Timeout}
}
