package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"okinoko_grants/config"
	"okinoko_grants/contract"
	"okinoko_grants/host"
	"okinoko_grants/sdk"
	"okinoko_grants/store"
)

// app is the wired host + contract for one CLI run.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    sdk.Store
	host     *host.Local
	contract *contract.Contract
	registry *prometheus.Registry
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}

func newApp(cfg *config.Config) (*app, error) {
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	h := host.NewLocal(st,
		host.WithLogger(log.Named("host")),
		host.WithContractID(cfg.Contract.ID),
	)

	balances := make(map[sdk.Address]int64, len(cfg.Genesis.Balances))
	for addr, raw := range cfg.Genesis.Balances {
		amount, err := contract.ParseAmount(raw)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("genesis balance of %s: %w", addr, err)
		}
		balances[sdk.Address(addr)] = int64(amount)
	}
	if len(balances) > 0 {
		seeded, err := h.Genesis(balances, contract.TreasuryAsset)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		if seeded {
			log.Info("genesis balances credited", zap.Int("accounts", len(balances)))
		}
	}

	reg := prometheus.NewRegistry()
	c := contract.New(h,
		contract.WithLogger(log.Named("contract")),
		contract.WithMetrics(contract.NewMetrics(reg)),
		contract.WithObserver(contract.LogObserver{Host: h}),
	)
	return &app{cfg: cfg, log: log, store: st, host: h, contract: c, registry: reg}, nil
}

func (a *app) Close() error {
	err := a.store.Close()
	// Sync fails on stdout/stderr for some platforms, nothing to do about it.
	_ = a.log.Sync()
	return err
}

// writeMetrics prints the app registry in the Prometheus text format.
func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

var errScenarioFailed = errors.New("scenario had failing steps")
