package marketplace

import (
	"strconv"
	"time"

	"github.com/angelmondragon/agricontract-backend/internal/storage"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/angelmondragon/agricontract-backend/pkg/events"
	"github.com/angelmondragon/agricontract-backend/pkg/validation"
)

// command is one capability-checked mutation. The guard checks role and
// ownership; run applies the transition to a private copy of the state.
type command struct {
	name   string
	role   enums.Role
	denied string
	owns   func(actor models.Session, st State) error
	run    func(actor models.Session, st State, now time.Time) (*outcome, error)
}

// outcome lists the collections to commit and the event to publish after the
// commit. A nil event with no touched collections means nothing changed.
type outcome struct {
	state   State
	touched []string
	event   *events.DomainEvent
	result  any
}

func guard(cmd command, actor *models.Session, st State) error {
	if actor == nil || actor.ID == "" || actor.Role != cmd.role {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, cmd.denied)
	}
	if cmd.owns == nil {
		return nil
	}
	return cmd.owns(*actor, st)
}

// ownsApplicationContract requires the application's contract to belong to
// the acting factory.
func ownsApplicationContract(applicationID int64) func(models.Session, State) error {
	return func(actor models.Session, st State) error {
		_, contractIdx, err := locate(st, applicationID)
		if err != nil {
			return err
		}
		if st.Contracts[contractIdx].CreatedByID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "this application belongs to another factory's contract")
		}
		return nil
	}
}

func createContractCommand(req CreateContractRequest) command {
	return command{
		name:   "create_contract",
		role:   enums.RoleFactory,
		denied: "Only factory users can create contracts.",
		run: func(actor models.Session, st State, now time.Time) (*outcome, error) {
			req := req.normalized()
			if err := validation.Struct(&req); err != nil {
				return nil, err
			}
			next, created := createContract(st, actor, req, now)
			return &outcome{
				state:   next,
				touched: []string{storage.CollectionContracts},
				event: &events.DomainEvent{
					Type:          enums.EventContractCreated,
					AggregateType: enums.AggregateContract,
					AggregateID:   strconv.FormatInt(created.ID, 10),
					Actor:         actorRef(actor),
					Data:          events.ContractCreatedPayload{Contract: created},
				},
				result: created,
			}, nil
		},
	}
}

func applyCommand(contractID int64) command {
	return command{
		name:   "apply_to_contract",
		role:   enums.RoleFarmer,
		denied: "Only farmer users can apply to contracts.",
		run: func(actor models.Session, st State, now time.Time) (*outcome, error) {
			next, app, first, err := applyToContract(st, actor, contractID, now)
			if err != nil {
				return nil, err
			}
			touched := []string{storage.CollectionApplications}
			if first {
				touched = append(touched, storage.CollectionContracts)
			}
			contract := next.Contracts[next.contractIndex(contractID)]
			return &outcome{
				state:   next,
				touched: touched,
				event: &events.DomainEvent{
					Type:          enums.EventApplicationSubmitted,
					AggregateType: enums.AggregateApplication,
					AggregateID:   strconv.FormatInt(app.ID, 10),
					Actor:         actorRef(actor),
					Data: events.ApplicationSubmittedPayload{
						Application:    app,
						Contract:       contract,
						FirstApplicant: first,
					},
				},
				result: app,
			}, nil
		},
	}
}

func approveCommand(applicationID int64) command {
	return command{
		name:   "approve_application",
		role:   enums.RoleFactory,
		denied: "Only factory users can approve applications.",
		owns:   ownsApplicationContract(applicationID),
		run: func(actor models.Session, st State, now time.Time) (*outcome, error) {
			next, decision, err := approveApplication(st, applicationID, now)
			if err != nil {
				return nil, err
			}
			out := &outcome{state: next, result: decision}
			if !decision.Changed {
				return out, nil
			}
			out.touched = []string{storage.CollectionContracts, storage.CollectionApplications}
			out.event = &events.DomainEvent{
				Type:          enums.EventApplicationApproved,
				AggregateType: enums.AggregateApplication,
				AggregateID:   strconv.FormatInt(applicationID, 10),
				Actor:         actorRef(actor),
				Data: events.ApplicationApprovedPayload{
					Application:  decision.Application,
					Contract:     decision.Contract,
					AutoRejected: decision.AutoRejected,
				},
			}
			return out, nil
		},
	}
}

func rejectCommand(applicationID int64) command {
	return command{
		name:   "reject_application",
		role:   enums.RoleFactory,
		denied: "Only factory users can reject applications.",
		owns:   ownsApplicationContract(applicationID),
		run: func(actor models.Session, st State, now time.Time) (*outcome, error) {
			next, decision, err := rejectApplication(st, applicationID, now)
			if err != nil {
				return nil, err
			}
			out := &outcome{state: next, result: decision}
			if !decision.Changed {
				return out, nil
			}
			out.touched = []string{storage.CollectionApplications}
			out.event = &events.DomainEvent{
				Type:          enums.EventApplicationRejected,
				AggregateType: enums.AggregateApplication,
				AggregateID:   strconv.FormatInt(applicationID, 10),
				Actor:         actorRef(actor),
				Data: events.ApplicationRejectedPayload{
					Application: decision.Application,
					Contract:    decision.Contract,
				},
			}
			return out, nil
		},
	}
}

func actorRef(actor models.Session) *events.ActorRef {
	return &events.ActorRef{UserID: actor.ID, Role: actor.Role}
}
