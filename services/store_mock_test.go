package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/repository"
)

// --- In-memory Store ---

// memStore implements repository.Store over plain maps. WithinTransaction
// serializes callers and restores a snapshot when the callback errors, so
// rollback semantics hold without a database.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	products   map[uuid.UUID]*models.Product
	orders     map[uuid.UUID]*models.Order
	orderSeq   []uuid.UUID
	users      map[uuid.UUID]*models.User
	authTokens map[string]*models.AuthToken
	payments   map[uuid.UUID]*models.Payment
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[uuid.UUID]*models.Product),
		orders:     make(map[uuid.UUID]*models.Order),
		users:      make(map[uuid.UUID]*models.User),
		authTokens: make(map[string]*models.AuthToken),
		payments:   make(map[uuid.UUID]*models.Payment),
	}
}

func (s *memStore) Products() repository.ProductRepository { return &memProductRepo{s} }
func (s *memStore) Orders() repository.OrderRepository     { return &memOrderRepo{s} }
func (s *memStore) Users() repository.UserRepository       { return &memUserRepo{s} }
func (s *memStore) Payments() repository.PaymentRepository { return &memPaymentRepo{s} }

func (s *memStore) WithinTransaction(_ context.Context, fn func(repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.clone()
	if err := fn(s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type memSnapshot struct {
	products   map[uuid.UUID]*models.Product
	orders     map[uuid.UUID]*models.Order
	orderSeq   []uuid.UUID
	users      map[uuid.UUID]*models.User
	authTokens map[string]*models.AuthToken
	payments   map[uuid.UUID]*models.Payment
}

func (s *memStore) clone() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		products:   make(map[uuid.UUID]*models.Product, len(s.products)),
		orders:     make(map[uuid.UUID]*models.Order, len(s.orders)),
		orderSeq:   append([]uuid.UUID(nil), s.orderSeq...),
		users:      make(map[uuid.UUID]*models.User, len(s.users)),
		authTokens: make(map[string]*models.AuthToken, len(s.authTokens)),
		payments:   make(map[uuid.UUID]*models.Payment, len(s.payments)),
	}
	for id, p := range s.products {
		snap.products[id] = copyProduct(p)
	}
	for id, o := range s.orders {
		snap.orders[id] = copyOrder(o)
	}
	for id, u := range s.users {
		cp := *u
		snap.users[id] = &cp
	}
	for id, t := range s.authTokens {
		cp := *t
		snap.authTokens[id] = &cp
	}
	for id, p := range s.payments {
		cp := *p
		snap.payments[id] = &cp
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.orders = snap.orders
	s.orderSeq = snap.orderSeq
	s.users = snap.users
	s.authTokens = snap.authTokens
	s.payments = snap.payments
}

func copyProduct(p *models.Product) *models.Product {
	cp := *p
	if p.SalePrice != nil {
		sale := *p.SalePrice
		cp.SalePrice = &sale
	}
	return &cp
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}

// --- Product repository ---

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyProduct(p), nil
}

func (r *memProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memProductRepo) FindAll(_ context.Context, filters repository.ProductFilters, page, limit int) ([]models.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []models.Product
	for _, p := range r.s.products {
		if filters.ActiveOnly && !p.IsActive {
			continue
		}
		if filters.Featured != nil && p.IsFeatured != *filters.Featured {
			continue
		}
		result = append(result, *copyProduct(p))
	}
	return result, int64(len(result)), nil
}

func (r *memProductRepo) Create(_ context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.s.products[product.ID] = copyProduct(product)
	return nil
}

func (r *memProductRepo) Update(_ context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.products[product.ID] = copyProduct(product)
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, id uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.StockQuantity < qty {
		return repository.ErrInsufficientStock
	}
	p.StockQuantity -= qty
	return nil
}

func (r *memProductRepo) IncrementStock(_ context.Context, id uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.StockQuantity += qty
	return nil
}

// --- Order repository ---

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyOrder(o), nil
}

func (r *memOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID, status string, _, _ int) ([]models.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []models.Order
	for _, id := range r.s.orderSeq {
		o := r.s.orders[id]
		if o.UserID != userID {
			continue
		}
		if status != "" && string(o.Status) != status {
			continue
		}
		result = append(result, *copyOrder(o))
	}
	return result, int64(len(result)), nil
}

func (r *memOrderRepo) FindAll(_ context.Context, filters repository.OrderFilters, _, _ int) ([]models.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []models.Order
	for _, id := range r.s.orderSeq {
		o := r.s.orders[id]
		if filters.Status != "" && string(o.Status) != filters.Status {
			continue
		}
		if filters.UserID != nil && o.UserID != *filters.UserID {
			continue
		}
		result = append(result, *copyOrder(o))
	}
	return result, int64(len(result)), nil
}

func (r *memOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	r.s.orders[order.ID] = copyOrder(order)
	r.s.orderSeq = append(r.s.orderSeq, order.ID)
	return nil
}

func (r *memOrderRepo) Update(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.orders[order.ID] = copyOrder(order)
	return nil
}

// --- User repository ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) CreateAuthToken(_ context.Context, token *models.AuthToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	cp := *token
	r.s.authTokens[token.TokenID] = &cp
	return nil
}

func (r *memUserRepo) FindAuthTokenByTokenID(_ context.Context, tokenID string) (*models.AuthToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.authTokens[tokenID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memUserRepo) RevokeAuthToken(_ context.Context, tokenID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.authTokens[tokenID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Revoked = true
	return nil
}

// --- Payment repository ---

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	cp := *payment
	r.s.payments[payment.ID] = &cp
	return nil
}

func (r *memPaymentRepo) FindByStripePaymentID(_ context.Context, stripeID string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.StripePaymentID != nil && *p.StripePaymentID == stripeID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPaymentRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.OrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPaymentRepo) UpdateFields(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"].(string); ok {
		p.Status = v
	}
	if v, ok := updates["succeeded_at"].(*time.Time); ok {
		p.SucceededAt = v
	}
	if v, ok := updates["failed_at"].(*time.Time); ok {
		p.FailedAt = v
	}
	if v, ok := updates["stripe_event_payload"].(string); ok {
		p.StripeEventPayload = &v
	}
	p.UpdatedAt = time.Now()
	return nil
}
