package service

import (
	"github.com/modic-health/sync-agent/internal/adapter"
	"github.com/modic-health/sync-agent/internal/config"
	"github.com/modic-health/sync-agent/internal/connectivity"
	"github.com/modic-health/sync-agent/internal/crypto"
	"github.com/modic-health/sync-agent/internal/logger"
	"github.com/modic-health/sync-agent/internal/store"
)

// Services aggregates the agent use-cases behind one constructor.
type Services struct {
	Orchestrator Orchestrator
	Merger       Merger
	Intake       Intake
}

// NewServices wires the orchestrator, merger and intake over shared stores
// and the remote client. Merger and intake report queue changes back to the
// orchestrator's unsynced-count observer.
func NewServices(
	stores *store.Storages,
	remote adapter.RemoteClient,
	codec crypto.Codec,
	observer connectivity.Observer,
	cfg config.Sync,
	log *logger.Logger,
) *Services {
	orch := newOrchestrator(stores, remote, codec, observer, cfg, log)

	return &Services{
		Orchestrator: orch,
		Merger:       NewMerger(stores, remote, orch.noteChange, log),
		Intake:       NewIntake(stores, codec, orch.noteChange, log),
	}
}
