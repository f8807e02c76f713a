// Package memory holds in-process implementations of the vault collaborators, used by
// local builds and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"gitlab.com/crypto_project/core/delegate_vault/src/errcode"
	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

type collection string

const (
	configs  collection = "configs"
	projects collection = "projects"
	managers collection = "managers"
	orders   collection = "orders"
)

type recordKey struct {
	coll    collection
	address solana.PublicKey
}

// undo remembers the value each key had before the transaction first wrote it.
type undo struct {
	prior map[recordKey]interface{}
	order []recordKey
}

type txKey struct{}

// Store keeps records in maps. Records are copied on the way in and out, so callers
// never share memory with the store.
type Store struct {
	mu      sync.RWMutex
	records map[recordKey]interface{}
}

func NewStore() *Store {
	return &Store{records: map[recordKey]interface{}{}}
}

// RunInTransaction undoes every write made through ctx when fn fails. A nested call joins
// the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*undo); ok {
		return fn(ctx)
	}
	u := &undo{prior: map[recordKey]interface{}{}}
	if err := fn(context.WithValue(ctx, txKey{}, u)); err != nil {
		s.rollback(u)
		return err
	}
	return nil
}

func (s *Store) rollback(u *undo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(u.order) - 1; i >= 0; i-- {
		k := u.order[i]
		if prior := u.prior[k]; prior != nil {
			s.records[k] = prior
		} else {
			delete(s.records, k)
		}
	}
}

func (s *Store) get(k recordKey) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[k]
	return v, ok
}

func (s *Store) put(ctx context.Context, k recordKey, v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := ctx.Value(txKey{}).(*undo); ok {
		if _, seen := u.prior[k]; !seen {
			u.prior[k] = s.records[k]
			u.order = append(u.order, k)
		}
	}
	if v == nil {
		delete(s.records, k)
		return
	}
	s.records[k] = v
}

func notFound(what string, address solana.PublicKey) error {
	return errcode.Newf(errcode.AccountNotFound, "%s %s", what, address)
}

func (s *Store) GetConfig(ctx context.Context) (*models.Config, error) {
	v, ok := s.get(recordKey{coll: configs})
	if !ok {
		return nil, errcode.Newf(errcode.AccountNotFound, "config")
	}
	c := *v.(*models.Config)
	return &c, nil
}

func (s *Store) SaveConfig(ctx context.Context, config *models.Config) error {
	if config == nil {
		return errors.New("nil config")
	}
	c := *config
	s.put(ctx, recordKey{coll: configs}, &c)
	return nil
}

func (s *Store) GetProject(ctx context.Context, address solana.PublicKey) (*models.Project, error) {
	v, ok := s.get(recordKey{projects, address})
	if !ok {
		return nil, notFound("project", address)
	}
	p := *v.(*models.Project)
	return &p, nil
}

func (s *Store) SaveProject(ctx context.Context, project *models.Project) error {
	if project == nil {
		return errors.New("nil project")
	}
	p := *project
	s.put(ctx, recordKey{projects, p.Address}, &p)
	return nil
}

func (s *Store) GetManager(ctx context.Context, address solana.PublicKey) (*models.Manager, error) {
	v, ok := s.get(recordKey{managers, address})
	if !ok {
		return nil, notFound("manager", address)
	}
	m := *v.(*models.Manager)
	return &m, nil
}

func (s *Store) SaveManager(ctx context.Context, manager *models.Manager) error {
	if manager == nil {
		return errors.New("nil manager")
	}
	m := *manager
	s.put(ctx, recordKey{managers, m.Address}, &m)
	return nil
}

func (s *Store) GetOrder(ctx context.Context, address solana.PublicKey) (*models.Order, error) {
	v, ok := s.get(recordKey{orders, address})
	if !ok {
		return nil, notFound("order", address)
	}
	return v.(*models.Order).Clone(), nil
}

func (s *Store) SaveOrder(ctx context.Context, order *models.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	o := order.Clone()
	s.put(ctx, recordKey{orders, o.Address}, o)
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, address solana.PublicKey) error {
	if _, ok := s.get(recordKey{orders, address}); !ok {
		return notFound("order", address)
	}
	s.put(ctx, recordKey{orders, address}, nil)
	return nil
}

// ListOrders returns the manager's orders sorted by address.
func (s *Store) ListOrders(ctx context.Context, manager solana.PublicKey) ([]*models.Order, error) {
	s.mu.RLock()
	var found []*models.Order
	for k, v := range s.records {
		if k.coll != orders {
			continue
		}
		if o := v.(*models.Order); o.Manager.Equals(manager) {
			found = append(found, o.Clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(found, func(i, j int) bool {
		return found[i].Address.String() < found[j].Address.String()
	})
	return found, nil
}
