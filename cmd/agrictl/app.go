package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/angelmondragon/agricontract-backend/internal/identity"
	"github.com/angelmondragon/agricontract-backend/internal/marketplace"
	"github.com/angelmondragon/agricontract-backend/internal/notifications"
	"github.com/angelmondragon/agricontract-backend/internal/storage"
	"github.com/angelmondragon/agricontract-backend/internal/views"
	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
	"github.com/angelmondragon/agricontract-backend/pkg/events"
	"github.com/angelmondragon/agricontract-backend/pkg/logger"
	"github.com/angelmondragon/agricontract-backend/pkg/security"
)

type app struct {
	identity *identity.Service
	engine   *marketplace.Engine
	out      io.Writer
	errOut   io.Writer
	detach   func()
}

func newApp(repo *storage.Repository, hasher security.Hasher, logg *logger.Logger, out, errOut io.Writer) (*app, error) {
	bus := events.NewBus(logg)
	detach := notifications.Wire(bus, notifications.Options{Toaster: notifications.NewToaster(out)})

	idSvc, err := identity.NewService(identity.ServiceParams{
		Store:     repo,
		Hasher:    hasher,
		Publisher: bus,
		Logger:    logg,
	})
	if err != nil {
		detach()
		return nil, err
	}
	engine, err := marketplace.NewEngine(marketplace.EngineParams{
		Store:     repo,
		Publisher: bus,
		Logger:    logg,
	})
	if err != nil {
		detach()
		return nil, err
	}
	return &app{identity: idSvc, engine: engine, out: out, errOut: errOut, detach: detach}, nil
}

func (a *app) close() {
	if a.detach != nil {
		a.detach()
	}
}

var errUnknownCommand = errors.New("unknown command, run agrictl help")

func (a *app) run(ctx context.Context, args []string) error {
	name, rest := args[0], args[1:]
	switch name {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.identity.Logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "contracts":
		return a.contracts(ctx, rest)
	case "create-contract":
		return a.createContract(ctx, rest)
	case "apply":
		return a.apply(ctx, rest)
	case "applications":
		return a.applications(ctx)
	case "approve":
		return a.decide(ctx, rest, true)
	case "reject":
		return a.decide(ctx, rest, false)
	case "dashboard":
		return a.dashboard(ctx)
	default:
		return fmt.Errorf("%q: %w", name, errUnknownCommand)
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// register mirrors the sign-up form: the confirmation must match and the new
// account is logged in straight away.
func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	var req identity.RegisterRequest
	var confirm string
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password, at least 6 characters")
	fs.StringVar(&confirm, "confirm-password", "", "repeat the password")
	fs.StringVar(&req.Role, "role", "", "farmer or factory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if confirm != req.Password {
		return pkgerrors.New(pkgerrors.CodeValidation, "Passwords do not match.").
			WithDetails(map[string]string{"confirmPassword": "must match password"})
	}

	if _, err := a.identity.Register(ctx, req); err != nil {
		return err
	}
	sess, err := a.identity.Login(ctx, identity.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s).\n", sess.Name, sess.Role.DisplayName())
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	var req identity.LoginRequest
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if current, err := a.identity.CurrentSession(ctx); err != nil {
		return err
	} else if current != nil {
		fmt.Fprintf(a.out, "Already logged in as %s (%s).\n", current.Name, current.Role.DisplayName())
		return nil
	}

	sess, err := a.identity.Login(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome back, %s.\n", views.FirstName(sess.Name))
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	sess, err := a.identity.RequireRole(ctx, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> %s\n", sess.Name, sess.Email, sess.Role.DisplayName())
	return nil
}

func (a *app) contracts(ctx context.Context, args []string) error {
	fs := a.flags("contracts")
	all := fs.Bool("all", false, "list every contract")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := a.identity.RequireRole(ctx, "")
	if err != nil {
		return err
	}
	state, err := a.engine.Snapshot(ctx)
	if err != nil {
		return err
	}

	switch {
	case *all:
		printContracts(a.out, state.Contracts)
	case sess.Role == enums.RoleFarmer:
		printAvailableContracts(a.out, views.FarmerAvailableContracts(*sess, state.Contracts, state.Applications))
	default:
		printFactoryContracts(a.out, views.FactoryContracts(*sess, state.Contracts, state.Applications))
	}
	return nil
}

func (a *app) createContract(ctx context.Context, args []string) error {
	fs := a.flags("create-contract")
	var req marketplace.CreateContractRequest
	fs.StringVar(&req.Crop, "crop", "", "crop name")
	fs.Int64Var(&req.Quantity, "quantity", 0, "quantity in tons")
	fs.Int64Var(&req.PricePerUnit, "price", 0, "price per ton in rupees")
	fs.IntVar(&req.Duration, "duration", 0, "duration in months")
	fs.StringVar(&req.DeliveryDate, "delivery", "", "delivery date, YYYY-MM-DD")
	fs.StringVar(&req.Description, "description", "", "details for farmers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := a.identity.CurrentSession(ctx)
	if err != nil {
		return err
	}
	_, err = a.engine.CreateContract(ctx, sess, req)
	return err
}

func (a *app) apply(ctx context.Context, args []string) error {
	fs := a.flags("apply")
	contractID := fs.Int64("contract", 0, "contract id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := a.identity.CurrentSession(ctx)
	if err != nil {
		return err
	}
	_, err = a.engine.ApplyToContract(ctx, sess, *contractID)
	return err
}

func (a *app) decide(ctx context.Context, args []string, approve bool) error {
	name := "reject"
	if approve {
		name = "approve"
	}
	fs := a.flags(name)
	applicationID := fs.Int64("application", 0, "application id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := a.identity.CurrentSession(ctx)
	if err != nil {
		return err
	}
	var decision *marketplace.Decision
	if approve {
		decision, err = a.engine.ApproveApplication(ctx, sess, *applicationID)
	} else {
		decision, err = a.engine.RejectApplication(ctx, sess, *applicationID)
	}
	if err != nil {
		return err
	}
	if !decision.Changed {
		fmt.Fprintf(a.out, "Application %d is already %s.\n", decision.Application.ID, views.StatusLabel(decision.Application.Status))
	}
	return nil
}

func (a *app) applications(ctx context.Context) error {
	sess, err := a.identity.RequireRole(ctx, "")
	if err != nil {
		return err
	}
	state, err := a.engine.Snapshot(ctx)
	if err != nil {
		return err
	}
	if sess.Role == enums.RoleFarmer {
		printFarmerApplications(a.out, views.FarmerApplications(*sess, state.Contracts, state.Applications))
		return nil
	}
	printFactoryApplications(a.out, views.FactoryApplications(*sess, state.Contracts, state.Applications))
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	sess, err := a.identity.RequireRole(ctx, "")
	if err != nil {
		return err
	}
	state, err := a.engine.Snapshot(ctx)
	if err != nil {
		return err
	}

	if sess.Role == enums.RoleFarmer {
		d := views.BuildFarmerDashboard(*sess, state.Contracts, state.Applications)
		fmt.Fprintf(a.out, "Welcome, %s (%s)\n", d.FirstName, d.RoleLabel)
		fmt.Fprintf(a.out, "Available: %d  Pending: %d  Active: %d\n\n", d.Stats.Available, d.Stats.Pending, d.Stats.Active)
		printAvailableContracts(a.out, d.Available)
		fmt.Fprintln(a.out)
		printFarmerApplications(a.out, d.Applications)
		return nil
	}

	d := views.BuildFactoryDashboard(*sess, state.Contracts, state.Applications)
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", d.FirstName, d.RoleLabel)
	fmt.Fprintf(a.out, "Contracts: %d  Active harvests: %d  Pending approvals: %d  Total value: %s\n\n",
		d.Stats.TotalContracts, d.Stats.ActiveHarvests, d.Stats.PendingApprovals, d.Stats.TotalValueLabel)
	printFactoryContracts(a.out, d.Contracts)
	fmt.Fprintf(a.out, "\nApplications (%s)\n", d.PendingBadge)
	printFactoryApplications(a.out, d.Applications)
	return nil
}

func printContracts(w io.Writer, contracts []models.Contract) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCROP\tQTY (TONS)\tPRICE/TON\tMONTHS\tSTATUS\tFACTORY")
	for _, c := range contracts {
		fmt.Fprintf(tw, "%d\t%s\t%d\tRs. %d\t%d\t%s\t%s\n", c.ID, c.Crop, c.Quantity, c.PricePerUnit, c.Duration, c.Status, c.CreatedBy)
	}
	_ = tw.Flush()
}

func printAvailableContracts(w io.Writer, rows []views.AvailableContractRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCROP\tQTY (TONS)\tPRICE/TON\tMONTHS\tSTATUS\tFACTORY\tOPEN")
	for _, r := range rows {
		open := "yes"
		if !r.CanApply {
			open = "awarded"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\tRs. %d\t%d\t%s\t%s\t%s\n", r.ID, r.Crop, r.Quantity, r.PricePerUnit, r.Duration, r.Status, r.CreatedBy, open)
	}
	_ = tw.Flush()
}

func printFactoryContracts(w io.Writer, rows []views.FactoryContractRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCROP\tQTY (TONS)\tPRICE/TON\tSTATUS\tAPPLICANTS\tAPPROVED")
	for _, r := range rows {
		c := r.Contract
		fmt.Fprintf(tw, "%d\t%s\t%d\tRs. %d\t%s\t%d\t%d\n", c.ID, c.Crop, c.Quantity, c.PricePerUnit, c.Status, r.Applicants, r.Approved)
	}
	_ = tw.Flush()
}

func printFarmerApplications(w io.Writer, rows []views.FarmerApplicationRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCONTRACT\tCROP\tFACTORY\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", r.Application.ID, r.Contract.ID, r.Contract.Crop, r.Contract.CreatedBy, r.StatusLabel)
	}
	_ = tw.Flush()
}

func printFactoryApplications(w io.Writer, rows []views.FactoryApplicationRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFARMER\t\tCONTRACT\tCROP\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", r.Application.ID, r.FarmerInitials, r.Application.FarmerName, r.Contract.ID, r.Contract.Crop, strings.TrimSpace(r.StatusLabel))
	}
	_ = tw.Flush()
}
