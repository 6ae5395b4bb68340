package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/agricontract-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/agricontract-backend/pkg/errors"
)

// Snapshot is every collection of one namespace as read at one moment.
type Snapshot struct {
	Users          map[string]models.User
	Contracts      []models.Contract
	Applications   []models.Application
	CurrentSession *models.Session
}

// Repository reads and writes the typed collections of one namespace.
type Repository struct {
	kv        KV
	namespace string
	seed      bool
}

// Option customizes a Repository.
type Option func(*Repository)

// WithoutSeed makes an absent contracts collection read as empty.
func WithoutSeed() Option {
	return func(r *Repository) { r.seed = false }
}

func NewRepository(kv KV, namespace string, opts ...Option) *Repository {
	r := &Repository{kv: kv, namespace: NormalizeNamespace(namespace), seed: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Namespace returns the namespace the repository is bound to.
func (r *Repository) Namespace() string {
	return r.namespace
}

func (r *Repository) key(collection string) string {
	return Key(r.namespace, collection)
}

// Load reads all collections.
func (r *Repository) Load(ctx context.Context) (*Snapshot, error) {
	users, err := r.Users(ctx)
	if err != nil {
		return nil, err
	}
	contracts, err := r.Contracts(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := r.Applications(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := r.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Users:          users,
		Contracts:      contracts,
		Applications:   apps,
		CurrentSession: sess,
	}, nil
}

func (r *Repository) Users(ctx context.Context) (map[string]models.User, error) {
	users := map[string]models.User{}
	found, err := r.read(ctx, CollectionUsers, &users)
	if err != nil {
		return nil, err
	}
	if !found || users == nil {
		return map[string]models.User{}, nil
	}
	return users, nil
}

func (r *Repository) Contracts(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	found, err := r.read(ctx, CollectionContracts, &contracts)
	if err != nil {
		return nil, err
	}
	if !found {
		if r.seed {
			return DefaultContracts(), nil
		}
		return []models.Contract{}, nil
	}
	if contracts == nil {
		contracts = []models.Contract{}
	}
	return contracts, nil
}

func (r *Repository) Applications(ctx context.Context) ([]models.Application, error) {
	var apps []models.Application
	if _, err := r.read(ctx, CollectionApplications, &apps); err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// CurrentSession returns nil when nobody is logged in.
func (r *Repository) CurrentSession(ctx context.Context) (*models.Session, error) {
	var sess *models.Session
	found, err := r.read(ctx, CollectionCurrentSession, &sess)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return sess, nil
}

// Commit writes every collection staged in cs as one unit.
func (r *Repository) Commit(ctx context.Context, cs *ChangeSet) error {
	if cs == nil || cs.empty() {
		return nil
	}
	sets := make(map[string]string, len(cs.sets))
	for collection, value := range cs.sets {
		raw, err := json.Marshal(value)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s", collection))
		}
		sets[r.key(collection)] = string(raw)
	}
	dels := make([]string, 0, len(cs.dels))
	for _, collection := range cs.dels {
		dels = append(dels, r.key(collection))
	}
	if err := r.kv.Commit(ctx, sets, dels); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist "+strings.Join(cs.collections(), ","))
	}
	return nil
}

func (r *Repository) read(ctx context.Context, collection string, dest any) (bool, error) {
	raw, found, err := r.kv.Get(ctx, r.key(collection))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("read %s", collection))
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s", collection))
	}
	return true, nil
}

// ChangeSet stages collection writes for one Commit.
type ChangeSet struct {
	sets map[string]any
	dels []string
}

func NewChangeSet() *ChangeSet {
	return &ChangeSet{sets: map[string]any{}}
}

func (c *ChangeSet) PutUsers(users map[string]models.User) *ChangeSet {
	return c.put(CollectionUsers, users)
}

func (c *ChangeSet) PutContracts(contracts []models.Contract) *ChangeSet {
	return c.put(CollectionContracts, contracts)
}

func (c *ChangeSet) PutApplications(apps []models.Application) *ChangeSet {
	return c.put(CollectionApplications, apps)
}

func (c *ChangeSet) PutSession(sess models.Session) *ChangeSet {
	return c.put(CollectionCurrentSession, sess)
}

// ClearSession removes the current session key.
func (c *ChangeSet) ClearSession() *ChangeSet {
	delete(c.sets, CollectionCurrentSession)
	c.dels = append(c.dels, CollectionCurrentSession)
	return c
}

// collections lists the staged collection names, writes first.
func (c *ChangeSet) collections() []string {
	out := make([]string, 0, len(c.sets)+len(c.dels))
	for _, name := range []string{CollectionUsers, CollectionContracts, CollectionApplications, CollectionCurrentSession} {
		if _, ok := c.sets[name]; ok {
			out = append(out, name)
		}
	}
	return append(out, c.dels...)
}

func (c *ChangeSet) put(collection string, value any) *ChangeSet {
	c.sets[collection] = value
	for i, name := range c.dels {
		if name == collection {
			c.dels = append(c.dels[:i], c.dels[i+1:]...)
			break
		}
	}
	return c
}

func (c *ChangeSet) empty() bool {
	return len(c.sets) == 0 && len(c.dels) == 0
}
