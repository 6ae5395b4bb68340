package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	"github.com/angelmondragon/agricontract-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
)

func TestRepositoryDefaults(t *testing.T) {
	repo := NewRepository(NewMemoryKV(), "tab-1")
	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Users) != 0 {
		t.Fatalf("expected no users, got %d", len(snap.Users))
	}
	if len(snap.Contracts) != 4 {
		t.Fatalf("expected 4 seed contracts, got %d", len(snap.Contracts))
	}
	for i, c := range snap.Contracts {
		if c.ID != int64(i+1) || c.Status != enums.ContractStatusOpen || c.CreatedByID != SystemOwnerID {
			t.Fatalf("unexpected seed contract %+v", c)
		}
	}
	if snap.Contracts[0].Crop != "Wheat" || snap.Contracts[3].Crop != "Cotton" {
		t.Fatalf("unexpected seed order")
	}
	if snap.Applications == nil || len(snap.Applications) != 0 {
		t.Fatalf("expected empty applications slice")
	}
	if snap.CurrentSession != nil {
		t.Fatalf("expected no session")
	}
}

func TestRepositoryWithoutSeed(t *testing.T) {
	repo := NewRepository(NewMemoryKV(), "tab-1", WithoutSeed())
	contracts, err := repo.Contracts(context.Background())
	if err != nil {
		t.Fatalf("contracts: %v", err)
	}
	if len(contracts) != 0 {
		t.Fatalf("expected no contracts, got %d", len(contracts))
	}
}

func TestDefaultContractsReturnsCopy(t *testing.T) {
	a := DefaultContracts()
	a[0].Crop = "Changed"
	if DefaultContracts()[0].Crop != "Wheat" {
		t.Fatal("seed data must not be shared")
	}
}

func TestRepositoryCommitRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryKV(), "tab-1")
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	users := map[string]models.User{
		"user_1": {ID: "user_1", Name: "Ravi", Email: "ravi@farm.in", Role: enums.RoleFarmer, CreatedAt: now},
	}
	contracts := append(DefaultContracts(), models.Contract{ID: 5, Crop: "Maize", Quantity: 10, PricePerUnit: 100, Status: enums.ContractStatusOpen})
	apps := []models.Application{{ID: 1, ContractID: 5, FarmerID: "user_1", FarmerName: "Ravi", Status: enums.ApplicationStatusApplied, AppliedAt: &now}}
	sess := users["user_1"].Session()

	cs := NewChangeSet().PutUsers(users).PutContracts(contracts).PutApplications(apps).PutSession(sess)
	if err := repo.Commit(ctx, cs); err != nil {
		t.Fatalf("commit: %v", err)
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Users["user_1"].Email != "ravi@farm.in" {
		t.Fatalf("unexpected users %+v", snap.Users)
	}
	if len(snap.Contracts) != 5 || snap.Contracts[4].Crop != "Maize" {
		t.Fatalf("unexpected contracts %+v", snap.Contracts)
	}
	if len(snap.Applications) != 1 || !snap.Applications[0].AppliedAt.Equal(now) {
		t.Fatalf("unexpected applications %+v", snap.Applications)
	}
	if snap.CurrentSession == nil || snap.CurrentSession.ID != "user_1" {
		t.Fatalf("unexpected session %+v", snap.CurrentSession)
	}

	if err := repo.Commit(ctx, NewChangeSet().ClearSession()); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	sessAfter, err := repo.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sessAfter != nil {
		t.Fatalf("expected session cleared, got %+v", sessAfter)
	}
}

func TestRepositoryNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	a := NewRepository(kv, "a")
	b := NewRepository(kv, "b")

	if err := a.Commit(ctx, NewChangeSet().PutSession(models.Session{ID: "user_a"})); err != nil {
		t.Fatalf("commit: %v", err)
	}
	sess, err := b.CurrentSession(ctx)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess != nil {
		t.Fatalf("namespace b must not see a's session")
	}
	if _, ok, _ := kv.Get(ctx, "agricontract:a:current_session"); !ok {
		t.Fatalf("expected namespaced key to be written")
	}
}

func TestRepositoryBlankNamespaceMatchesKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	repo := NewRepository(kv, "  ")
	if repo.Namespace() != DefaultNamespace {
		t.Fatalf("expected %q, got %q", DefaultNamespace, repo.Namespace())
	}
	if err := repo.Commit(ctx, NewChangeSet().PutSession(models.Session{ID: "user_1"})); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, Key(repo.Namespace(), CollectionCurrentSession)); !ok {
		t.Fatalf("expected session under the reported namespace")
	}
}

func TestRepositoryCorruptCollection(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Commit(ctx, map[string]string{Key("x", CollectionContracts): "{not json"}, nil)
	repo := NewRepository(kv, "x")

	_, err := repo.Contracts(ctx)
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

type failingKV struct {
	*MemoryKV
	err error
}

func (f failingKV) Commit(context.Context, map[string]string, []string) error {
	return f.err
}

func TestRepositoryCommitFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	kv := failingKV{MemoryKV: NewMemoryKV(), err: errors.New("disk full")}
	repo := NewRepository(kv, "x")

	err := repo.Commit(ctx, NewChangeSet().PutApplications([]models.Application{{ID: 1}}).PutContracts(nil))
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if msg := pkgerrors.As(err).Message(); msg != "persist contracts,applications" {
		t.Fatalf("unexpected message %q", msg)
	}
	apps, err := repo.Applications(ctx)
	if err != nil {
		t.Fatalf("applications: %v", err)
	}
	if len(apps) != 0 {
		t.Fatalf("expected nothing written, got %+v", apps)
	}
}

func TestChangeSetCollections(t *testing.T) {
	cs := NewChangeSet().ClearSession().PutApplications(nil).PutContracts(nil)
	got := cs.collections()
	want := []string{CollectionContracts, CollectionApplications, CollectionCurrentSession}
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}

	cs.PutSession(models.Session{ID: "u"})
	if got := cs.collections(); len(got) != 3 || got[2] != CollectionCurrentSession {
		t.Fatalf("put after clear should replace the delete, got %v", got)
	}
}

func TestKey(t *testing.T) {
	if got := Key("tab-1", CollectionUsers); got != "agricontract:tab-1:users" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := Key(" ", CollectionUsers); got != "agricontract:default:users" {
		t.Fatalf("unexpected key %s", got)
	}
}
