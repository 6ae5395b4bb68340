package marketplace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/agricontract-backend/internal/storage"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/angelmondragon/agricontract-backend/pkg/events"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/angelmondragon/agricontract-backend/pkg/metrics"
)

type store interface {
	Contracts(ctx context.Context) ([]models.Contract, error)
	Applications(ctx context.Context) ([]models.Application, error)
	Commit(ctx context.Context, cs *storage.ChangeSet) error
}

// Engine owns contracts and applications and runs every lifecycle mutation.
type Engine struct {
	mu        sync.Mutex
	store     store
	publisher events.Publisher
	metrics   *metrics.CommandMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// EngineParams bundles the dependencies required to build an Engine.
type EngineParams struct {
	Store     store
	Publisher events.Publisher
	Metrics   *metrics.CommandMetrics
	Logger    *logger.Logger
	Clock     func() time.Time
}

func NewEngine(params EngineParams) (*Engine, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		store:     params.Store,
		publisher: params.Publisher,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       clock,
	}, nil
}

// CreateContract posts a new OPEN contract owned by the acting factory.
func (e *Engine) CreateContract(ctx context.Context, actor *models.Session, req CreateContractRequest) (*models.Contract, error) {
	result, err := e.execute(ctx, actor, createContractCommand(req))
	if err != nil {
		return nil, err
	}
	created := result.(models.Contract)
	return &created, nil
}

// ApplyToContract records the acting farmer's application.
func (e *Engine) ApplyToContract(ctx context.Context, actor *models.Session, contractID int64) (*models.Application, error) {
	result, err := e.execute(ctx, actor, applyCommand(contractID))
	if err != nil {
		return nil, err
	}
	app := result.(models.Application)
	return &app, nil
}

// ApproveApplication awards the contract and auto-rejects pending siblings.
func (e *Engine) ApproveApplication(ctx context.Context, actor *models.Session, applicationID int64) (*Decision, error) {
	result, err := e.execute(ctx, actor, approveCommand(applicationID))
	if err != nil {
		return nil, err
	}
	decision := result.(Decision)
	return &decision, nil
}

// RejectApplication rejects one application; the contract is untouched.
func (e *Engine) RejectApplication(ctx context.Context, actor *models.Session, applicationID int64) (*Decision, error) {
	result, err := e.execute(ctx, actor, rejectCommand(applicationID))
	if err != nil {
		return nil, err
	}
	decision := result.(Decision)
	return &decision, nil
}

func (e *Engine) ListContracts(ctx context.Context) ([]models.Contract, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Contracts(ctx)
}

func (e *Engine) ListApplications(ctx context.Context) ([]models.Application, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Applications(ctx)
}

// Snapshot returns contracts and applications read under one lock.
func (e *Engine) Snapshot(ctx context.Context) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.load(ctx)
}

func (e *Engine) GetContract(ctx context.Context, id int64) (*models.Contract, error) {
	contracts, err := e.ListContracts(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range contracts {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
}

func (e *Engine) load(ctx context.Context) (State, error) {
	contracts, err := e.store.Contracts(ctx)
	if err != nil {
		return State{}, err
	}
	apps, err := e.store.Applications(ctx)
	if err != nil {
		return State{}, err
	}
	return State{Contracts: contracts, Applications: apps}, nil
}

// execute runs cmd: lock, load, guard, transition on a copy, commit, unlock,
// then publish. Nothing is written when any step before the commit fails.
func (e *Engine) execute(ctx context.Context, actor *models.Session, cmd command) (result any, err error) {
	started := e.now()
	defer func() {
		e.metrics.Observe(cmd.name, e.now().Sub(started), err)
		if err != nil {
			e.logFailure(ctx, cmd.name, actor, err)
		}
	}()

	out, err := e.commit(ctx, actor, cmd)
	if err != nil {
		return nil, err
	}
	if out.event != nil && e.publisher != nil {
		e.publisher.Publish(ctx, *out.event)
	}
	return out.result, nil
}

func (e *Engine) commit(ctx context.Context, actor *models.Session, cmd command) (*outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := guard(cmd, actor, st); err != nil {
		return nil, err
	}
	out, err := cmd.run(*actor, st.clone(), e.now().UTC())
	if err != nil {
		return nil, err
	}
	if len(out.touched) == 0 {
		return out, nil
	}

	cs := storage.NewChangeSet()
	for _, name := range out.touched {
		switch name {
		case storage.CollectionContracts:
			cs.PutContracts(out.state.Contracts)
		case storage.CollectionApplications:
			cs.PutApplications(out.state.Applications)
		}
	}
	if err := e.store.Commit(ctx, cs); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) logFailure(ctx context.Context, name string, actor *models.Session, err error) {
	if e.logg == nil {
		return
	}
	fields := map[string]any{"command": name}
	if actor != nil {
		fields["user_id"] = actor.ID
		fields["actor_role"] = actor.Role
	}
	logCtx := e.logg.WithFields(ctx, fields)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() == pkgerrors.CodeInternal || typed.Code() == pkgerrors.CodeDependency {
		e.logg.Error(logCtx, "marketplace command failed", err)
		return
	}
	e.logg.Debug(logCtx, "marketplace command rejected: "+typed.Message())
}
