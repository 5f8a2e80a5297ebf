// Package memory is an in-process implementation of the repository
// interfaces used by the test suites.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/models"
	"phonestore/repository"
)

// Store keeps every collection in insertion order behind one lock.
type Store struct {
	mu     sync.RWMutex
	phones []models.Phone
	users  []models.User
	orders []models.Order
	carts  map[primitive.ObjectID]models.Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[primitive.ObjectID]models.Cart)}
}

func (s *Store) Phones() *Phones { return &Phones{s} }
func (s *Store) Users() *Users   { return &Users{s} }
func (s *Store) Orders() *Orders { return &Orders{s} }
func (s *Store) Carts() *Carts   { return &Carts{s} }

func clonePhone(p models.Phone) models.Phone {
	p.Images = slices.Clone(p.Images)
	p.Videos = slices.Clone(p.Videos)
	p.Tags = slices.Clone(p.Tags)
	p.Specifications.Camera.Rear.Features = slices.Clone(p.Specifications.Camera.Rear.Features)
	p.Specifications.Connectivity.Network = slices.Clone(p.Specifications.Connectivity.Network)
	p.Specifications.Connectivity.Ports = slices.Clone(p.Specifications.Connectivity.Ports)
	p.Specifications.Design.Colors = slices.Clone(p.Specifications.Design.Colors)
	return p
}

func cloneUser(u models.User) models.User {
	u.Addresses = slices.Clone(u.Addresses)
	return u
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

// Phones implements repository.PhoneRepository
type Phones struct{ s *Store }

var _ repository.PhoneRepository = (*Phones)(nil)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchPhone(p *models.Phone, q repository.PhoneQuery) bool {
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	if q.Brand != "" && p.Brand != q.Brand {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.RAM != "" && p.Specifications.Performance.RAM != q.RAM {
		return false
	}
	if q.Storage != "" && p.Specifications.Performance.Storage != q.Storage {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Subcategory != "" && p.Subcategory != q.Subcategory {
		return false
	}
	if q.Search != "" && !containsFold(p.Name, q.Search) && !containsFold(p.Brand, q.Search) && !containsFold(p.Description, q.Search) {
		return false
	}
	if q.FullText != "" {
		hit := false
		for _, word := range strings.Fields(q.FullText) {
			if containsFold(p.Name, word) || containsFold(p.Brand, word) || containsFold(p.Description, word) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if q.IDs != nil && !slices.Contains(q.IDs, p.ID) {
		return false
	}
	if slices.Contains(q.ExcludeIDs, p.ID) {
		return false
	}
	return true
}

func comparePhones(key repository.SortKey) func(a, b models.Phone) int {
	switch key {
	case repository.SortPrice:
		return func(a, b models.Phone) int { return cmp.Compare(a.Price, b.Price) }
	case repository.SortRating:
		return func(a, b models.Phone) int { return cmp.Compare(a.AverageRating, b.AverageRating) }
	case repository.SortName:
		return func(a, b models.Phone) int { return strings.Compare(a.Name, b.Name) }
	case repository.SortCreatedAt:
		return func(a, b models.Phone) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	return nil
}

func (r *Phones) matching(q repository.PhoneQuery) []models.Phone {
	out := []models.Phone{}
	for _, p := range r.s.phones {
		if matchPhone(&p, q) {
			out = append(out, clonePhone(p))
		}
	}
	return out
}

func (r *Phones) Find(_ context.Context, q repository.PhoneQuery) ([]models.Phone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.matching(q)
	if compare := comparePhones(q.Sort); compare != nil {
		slices.SortStableFunc(out, func(a, b models.Phone) int {
			if q.Desc {
				return compare(b, a)
			}
			return compare(a, b)
		})
	}
	if q.Skip > 0 {
		if q.Skip >= int64(len(out)) {
			return []models.Phone{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < int64(len(out)) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *Phones) Count(_ context.Context, q repository.PhoneQuery) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.matching(q))), nil
}

func (r *Phones) index(id primitive.ObjectID) int {
	return slices.IndexFunc(r.s.phones, func(p models.Phone) bool { return p.ID == id })
}

func (r *Phones) FindByID(_ context.Context, id primitive.ObjectID) (*models.Phone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	p := clonePhone(r.s.phones[i])
	return &p, nil
}

func (r *Phones) skuTaken(sku string, except primitive.ObjectID) bool {
	return slices.ContainsFunc(r.s.phones, func(p models.Phone) bool { return p.SKU == sku && p.ID != except })
}

func (r *Phones) Create(_ context.Context, p *models.Phone) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.skuTaken(p.SKU, primitive.NilObjectID) {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	r.s.phones = append(r.s.phones, clonePhone(*p))
	return nil
}

func (r *Phones) Replace(_ context.Context, p *models.Phone) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(p.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	if r.skuTaken(p.SKU, p.ID) {
		return repository.ErrDuplicate
	}
	p.UpdatedAt = time.Now().UTC()
	r.s.phones[i] = clonePhone(*p)
	return nil
}

func (r *Phones) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.s.phones = slices.Delete(r.s.phones, i, i+1)
	return nil
}

func (r *Phones) ReserveStock(_ context.Context, id primitive.ObjectID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	if r.s.phones[i].Stock < qty {
		return repository.ErrInsufficientStock
	}
	r.s.phones[i].Stock -= qty
	return nil
}

func (r *Phones) AdjustStock(_ context.Context, id primitive.ObjectID, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.s.phones[i].Stock += delta
	return nil
}

// Users implements repository.UserRepository
type Users struct{ s *Store }

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) find(match func(u models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := slices.IndexFunc(r.s.users, match)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	u := cloneUser(r.s.users[i])
	return &u, nil
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *Users) FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*models.User, error) {
	if googleID != "" {
		if u, err := r.find(func(u models.User) bool { return u.GoogleID == googleID }); err == nil {
			return u, nil
		}
	}
	return r.FindByEmail(ctx, email)
}

func (r *Users) List(_ context.Context, skip, limit int64) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.User{}
	for i := len(r.s.users) - 1; i >= 0; i-- {
		out = append(out, cloneUser(r.s.users[i]))
	}
	return page(out, skip, limit), nil
}

func (r *Users) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

func (r *Users) conflicts(u *models.User) bool {
	return slices.ContainsFunc(r.s.users, func(o models.User) bool {
		if o.ID == u.ID {
			return false
		}
		return o.Email == u.Email || (u.GoogleID != "" && o.GoogleID == u.GoogleID)
	})
}

func (r *Users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = primitive.NewObjectID()
	if r.conflicts(u) {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users = append(r.s.users, cloneUser(*u))
	return nil
}

func (r *Users) Replace(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.users, func(o models.User) bool { return o.ID == u.ID })
	if i < 0 {
		return repository.ErrNotFound
	}
	if r.conflicts(u) {
		return repository.ErrDuplicate
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[i] = cloneUser(*u)
	return nil
}

func (r *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.users, func(o models.User) bool { return o.ID == id })
	if i < 0 {
		return repository.ErrNotFound
	}
	r.s.users = slices.Delete(r.s.users, i, i+1)
	return nil
}

// Orders implements repository.OrderRepository
type Orders struct{ s *Store }

var _ repository.OrderRepository = (*Orders)(nil)

func matchOrder(o *models.Order, q repository.OrderQuery) bool {
	if q.UserID != nil && o.User != *q.UserID {
		return false
	}
	return q.Status == "" || o.Status == q.Status
}

func (r *Orders) Create(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.s.orders = append(r.s.orders, cloneOrder(*o))
	return nil
}

func (r *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := slices.IndexFunc(r.s.orders, func(o models.Order) bool { return o.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	o := cloneOrder(r.s.orders[i])
	return &o, nil
}

func (r *Orders) Find(_ context.Context, q repository.OrderQuery) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Order{}
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		if matchOrder(&r.s.orders[i], q) {
			out = append(out, cloneOrder(r.s.orders[i]))
		}
	}
	return page(out, q.Skip, q.Limit), nil
}

func (r *Orders) Count(_ context.Context, q repository.OrderQuery) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for i := range r.s.orders {
		if matchOrder(&r.s.orders[i], q) {
			n++
		}
	}
	return n, nil
}

func (r *Orders) UpdateIfStatus(_ context.Context, o *models.Order, expected models.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := slices.IndexFunc(r.s.orders, func(x models.Order) bool { return x.ID == o.ID })
	if i < 0 {
		return repository.ErrNotFound
	}
	if r.s.orders[i].Status != expected {
		return repository.ErrConflict
	}
	o.UpdatedAt = time.Now().UTC()
	r.s.orders[i] = cloneOrder(*o)
	return nil
}

// Carts implements repository.CartRepository
type Carts struct{ s *Store }

var _ repository.CartRepository = (*Carts)(nil)

func (r *Carts) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.carts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Items = slices.Clone(c.Items)
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &c, nil
}

func (r *Carts) Save(_ context.Context, c *models.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.UpdatedAt = time.Now().UTC()
	stored := *c
	stored.Items = slices.Clone(c.Items)
	r.s.carts[c.UserID] = stored
	return nil
}

func (r *Carts) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.carts, userID)
	return nil
}

func page[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}
