package impl

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// memStore is an in-memory implementation of every repository port. Transactions are
// fully serialized and roll back by restoring a snapshot, which is enough to observe
// atomicity and the one-cart-per-owner rule in use-case tests.
type memStore struct {
	txMu sync.Mutex

	guests        map[uuid.UUID]*entity.GuestIdentity
	carts         map[uuid.UUID]*entity.Cart
	items         map[uuid.UUID]*entity.CartLineItem
	variants      map[uuid.UUID]*entity.ProductVariant
	coupons       map[string]*entity.Coupon
	orders        map[uuid.UUID]*entity.Order
	users         map[uuid.UUID]*entity.User
	auths         map[uuid.UUID]*entity.Authentication
	refreshTokens map[uuid.UUID]*entity.RefreshToken
	products      map[uuid.UUID]*entity.Product
	wishlist      map[uuid.UUID]*entity.WishlistItem

	clock    time.Time
	failures map[string]error
	txCount  int
}

func newMemStore() *memStore {
	return &memStore{
		guests:        map[uuid.UUID]*entity.GuestIdentity{},
		carts:         map[uuid.UUID]*entity.Cart{},
		items:         map[uuid.UUID]*entity.CartLineItem{},
		variants:      map[uuid.UUID]*entity.ProductVariant{},
		coupons:       map[string]*entity.Coupon{},
		orders:        map[uuid.UUID]*entity.Order{},
		users:         map[uuid.UUID]*entity.User{},
		auths:         map[uuid.UUID]*entity.Authentication{},
		refreshTokens: map[uuid.UUID]*entity.RefreshToken{},
		products:      map[uuid.UUID]*entity.Product{},
		wishlist:      map[uuid.UUID]*entity.WishlistItem{},
		clock:         time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		failures:      map[string]error{},
	}
}

// failOnce makes the next call of the named operation return err.
func (s *memStore) failOnce(op string, err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.failures[op] = err
}

func (s *memStore) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)

		return err
	}

	return nil
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)

	return s.clock
}

// --- seeding and inspection helpers (take the lock themselves) ---

func (s *memStore) addVariant(price string, salePrice *string, productName, color, size string) *entity.ProductVariant {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	v := &entity.ProductVariant{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Price:     price,
		SalePrice: salePrice,
		Product:   &entity.Product{ID: uuid.New(), Name: productName},
		Color:     &entity.Color{ID: uuid.New(), Name: color},
		Size:      &entity.Size{ID: uuid.New(), Name: size},
	}
	v.Product.ID = v.ProductID
	s.variants[v.ID] = v
	s.products[v.ProductID] = v.Product

	return v
}

func (s *memStore) addProduct(name string) *entity.Product {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	p := &entity.Product{ID: uuid.New(), Name: name}
	s.products[p.ID] = p

	return p
}

func (s *memStore) wishlistCount() int {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return len(s.wishlist)
}

func (s *memStore) deleteVariant(id uuid.UUID) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	delete(s.variants, id)
}

func (s *memStore) addCoupon(coupon *entity.Coupon) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	c := *coupon
	s.coupons[strings.ToUpper(c.Code)] = &c
}

func (s *memStore) addGuest(expiresAt time.Time) *entity.GuestIdentity {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	g := &entity.GuestIdentity{ID: uuid.New(), SessionToken: uuid.NewString(), ExpiresAt: expiresAt, CreatedAt: s.tick()}
	s.guests[g.ID] = g
	c := *g

	return &c
}

func (s *memStore) cartsOf(owner entity.CartOwner) []*entity.Cart {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return s.cartsByOwner(owner)
}

func (s *memStore) cartCount() int {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return len(s.carts)
}

func (s *memStore) itemCount() int {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return len(s.items)
}

func (s *memStore) orderCount() int {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return len(s.orders)
}

func (s *memStore) hasGuest(id uuid.UUID) bool {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	_, ok := s.guests[id]

	return ok
}

// --- TransactionManager ---

func (s *memStore) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.txCount++

	snap := s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.restore(snap)
			panic(r)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	if err := s.fail("tx"); err != nil {
		return err
	}

	return fn(&memFactory{store: s, inTx: true})
}

type memSnapshot struct {
	guests        map[uuid.UUID]*entity.GuestIdentity
	carts         map[uuid.UUID]*entity.Cart
	items         map[uuid.UUID]*entity.CartLineItem
	orders        map[uuid.UUID]*entity.Order
	users         map[uuid.UUID]*entity.User
	auths         map[uuid.UUID]*entity.Authentication
	refreshTokens map[uuid.UUID]*entity.RefreshToken
	wishlist      map[uuid.UUID]*entity.WishlistItem
}

func copyMap[K comparable, V any](in map[K]*V) map[K]*V {
	out := make(map[K]*V, len(in))
	for k, v := range in {
		c := *v
		out[k] = &c
	}

	return out
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		guests:        copyMap(s.guests),
		carts:         copyMap(s.carts),
		items:         copyMap(s.items),
		orders:        copyMap(s.orders),
		users:         copyMap(s.users),
		auths:         copyMap(s.auths),
		refreshTokens: copyMap(s.refreshTokens),
		wishlist:      copyMap(s.wishlist),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.guests = snap.guests
	s.carts = snap.carts
	s.items = snap.items
	s.orders = snap.orders
	s.users = snap.users
	s.auths = snap.auths
	s.refreshTokens = snap.refreshTokens
	s.wishlist = snap.wishlist
}

// memFactory hands out repositories. Outside a transaction every call takes the store
// lock on its own.
type memFactory struct {
	store *memStore
	inTx  bool
}

func (s *memStore) factory() *memFactory { return &memFactory{store: s} }

func (f *memFactory) lock() func() {
	if f.inTx {
		return func() {}
	}
	f.store.txMu.Lock()

	return f.store.txMu.Unlock
}

func (f *memFactory) NewUserRepository() repository.UserRepository { return &memUserRepo{f} }
func (f *memFactory) NewAuthRepository() repository.AuthRepository { return &memAuthRepo{f} }
func (f *memFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return &memRefreshRepo{f}
}
func (f *memFactory) NewCartRepository() repository.CartRepository       { return &memCartRepo{f} }
func (f *memFactory) NewGuestRepository() repository.GuestRepository     { return &memGuestRepo{f} }
func (f *memFactory) NewVariantRepository() repository.VariantRepository { return &memVariantRepo{f} }
func (f *memFactory) NewCouponRepository() repository.CouponRepository   { return &memCouponRepo{f} }
func (f *memFactory) NewOrderRepository() repository.OrderRepository     { return &memOrderRepo{f} }
func (f *memFactory) NewWishlistRepository() repository.WishlistRepository {
	return &memWishlistRepo{f}
}

// --- carts ---

type memCartRepo struct{ f *memFactory }

func ownerMatches(c *entity.Cart, owner entity.CartOwner) bool {
	switch {
	case owner.IsUser():
		return c.Owner.IsUser() && c.Owner.UserID == owner.UserID
	case owner.IsGuest():
		return c.Owner.IsGuest() && c.Owner.GuestID == owner.GuestID
	default:
		return false
	}
}

// loadCart returns a detached copy with items and live variants attached.
func (s *memStore) loadCart(id uuid.UUID) *entity.Cart {
	stored, ok := s.carts[id]
	if !ok {
		return nil
	}
	cart := *stored
	cart.Items = nil
	for _, item := range s.items {
		if item.CartID != id {
			continue
		}
		c := *item
		if v, ok := s.variants[item.ProductVariantID]; ok {
			vc := *v
			c.Variant = &vc
		}
		cart.Items = append(cart.Items, &c)
	}
	sort.Slice(cart.Items, func(i, j int) bool {
		return cart.Items[i].CreatedAt.Before(cart.Items[j].CreatedAt)
	})

	return &cart
}

func (s *memStore) cartsByOwner(owner entity.CartOwner) []*entity.Cart {
	var out []*entity.Cart
	for id, c := range s.carts {
		if ownerMatches(c, owner) {
			out = append(out, s.loadCart(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })

	return out
}

func (r *memCartRepo) FindByOwner(_ context.Context, owner entity.CartOwner) ([]*entity.Cart, error) {
	defer r.f.lock()()
	if err := r.f.store.fail("FindByOwner"); err != nil {
		return nil, err
	}

	return r.f.store.cartsByOwner(owner), nil
}

func (r *memCartRepo) FindByOwnerForUpdate(ctx context.Context, owner entity.CartOwner) ([]*entity.Cart, error) {
	return r.FindByOwner(ctx, owner)
}

func (r *memCartRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Cart, error) {
	defer r.f.lock()()
	cart := r.f.store.loadCart(id)
	if cart == nil {
		return nil, repository.ErrCartNotFound
	}

	return cart, nil
}

func (r *memCartRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	return r.FindByID(ctx, id)
}

func (r *memCartRepo) GetOrCreate(_ context.Context, owner entity.CartOwner) (*entity.Cart, error) {
	defer r.f.lock()()
	s := r.f.store
	if existing := s.cartsByOwner(owner); len(existing) > 0 {
		return existing[0], nil
	}
	now := s.tick()
	cart := &entity.Cart{ID: uuid.New(), Owner: owner, CreatedAt: now, UpdatedAt: now}
	s.carts[cart.ID] = cart

	return s.loadCart(cart.ID), nil
}

func (r *memCartRepo) ReassignOwner(_ context.Context, cartID uuid.UUID, owner entity.CartOwner) error {
	defer r.f.lock()()
	s := r.f.store
	if err := s.fail("ReassignOwner"); err != nil {
		return err
	}
	cart, ok := s.carts[cartID]
	if !ok {
		return repository.ErrCartNotFound
	}
	for id, c := range s.carts {
		if id != cartID && ownerMatches(c, owner) {
			return repository.ErrOwnerTaken
		}
	}
	cart.Owner = owner
	cart.UpdatedAt = s.tick()

	return nil
}

func (r *memCartRepo) SetCoupon(_ context.Context, cartID uuid.UUID, code string) error {
	defer r.f.lock()()
	cart, ok := r.f.store.carts[cartID]
	if !ok {
		return repository.ErrCartNotFound
	}
	cart.CouponCode = code

	return nil
}

func (r *memCartRepo) Touch(_ context.Context, cartID uuid.UUID) error {
	defer r.f.lock()()
	cart, ok := r.f.store.carts[cartID]
	if !ok {
		return repository.ErrCartNotFound
	}
	cart.UpdatedAt = r.f.store.tick()

	return nil
}

func (r *memCartRepo) Delete(_ context.Context, cartID uuid.UUID) error {
	defer r.f.lock()()
	s := r.f.store
	if err := s.fail("DeleteCart"); err != nil {
		return err
	}
	if _, ok := s.carts[cartID]; !ok {
		return repository.ErrCartNotFound
	}
	for id, item := range s.items {
		if item.CartID == cartID {
			delete(s.items, id)
		}
	}
	delete(s.carts, cartID)

	return nil
}

func (r *memCartRepo) FindLineItem(_ context.Context, cartID, itemID uuid.UUID) (*entity.CartLineItem, error) {
	defer r.f.lock()()
	item, ok := r.f.store.items[itemID]
	if !ok || item.CartID != cartID {
		return nil, repository.ErrLineItemNotFound
	}
	c := *item

	return &c, nil
}

func (r *memCartRepo) UpsertLineItem(_ context.Context, cartID, variantID uuid.UUID, quantity int) (*entity.CartLineItem, error) {
	defer r.f.lock()()
	s := r.f.store
	if _, ok := s.carts[cartID]; !ok {
		return nil, repository.ErrCartNotFound
	}
	now := s.tick()
	for _, item := range s.items {
		if item.CartID == cartID && item.ProductVariantID == variantID {
			item.Quantity += quantity
			item.UpdatedAt = now
			c := *item

			return &c, nil
		}
	}
	item := &entity.CartLineItem{ID: uuid.New(), CartID: cartID, ProductVariantID: variantID, Quantity: quantity, CreatedAt: now, UpdatedAt: now}
	s.items[item.ID] = item
	c := *item

	return &c, nil
}

func (r *memCartRepo) SetLineItemQuantity(_ context.Context, cartID, itemID uuid.UUID, quantity int) error {
	defer r.f.lock()()
	item, ok := r.f.store.items[itemID]
	if !ok || item.CartID != cartID {
		return repository.ErrLineItemNotFound
	}
	item.Quantity = quantity

	return nil
}

func (r *memCartRepo) DeleteLineItem(_ context.Context, cartID, itemID uuid.UUID) error {
	defer r.f.lock()()
	item, ok := r.f.store.items[itemID]
	if !ok || item.CartID != cartID {
		return repository.ErrLineItemNotFound
	}
	delete(r.f.store.items, itemID)

	return nil
}

func (r *memCartRepo) DeleteLineItems(_ context.Context, cartID uuid.UUID) error {
	defer r.f.lock()()
	for id, item := range r.f.store.items {
		if item.CartID == cartID {
			delete(r.f.store.items, id)
		}
	}

	return nil
}

func (r *memCartRepo) MoveLineItem(_ context.Context, itemID, toCartID uuid.UUID) error {
	defer r.f.lock()()
	s := r.f.store
	item, ok := s.items[itemID]
	if !ok {
		return repository.ErrLineItemNotFound
	}
	for _, other := range s.items {
		if other.CartID == toCartID && other.ProductVariantID == item.ProductVariantID {
			return errors.New("unique violation: cart_id, product_variant_id")
		}
	}
	item.CartID = toCartID

	return nil
}

// --- guests ---

type memGuestRepo struct{ f *memFactory }

func (r *memGuestRepo) Create(_ context.Context, guest *entity.GuestIdentity) error {
	defer r.f.lock()()
	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	c := *guest
	r.f.store.guests[guest.ID] = &c

	return nil
}

func (r *memGuestRepo) FindByToken(_ context.Context, token string) (*entity.GuestIdentity, error) {
	defer r.f.lock()()
	for _, g := range r.f.store.guests {
		if g.SessionToken == token {
			c := *g

			return &c, nil
		}
	}

	return nil, repository.ErrGuestNotFound
}

func (r *memGuestRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.GuestIdentity, error) {
	defer r.f.lock()()
	g, ok := r.f.store.guests[id]
	if !ok {
		return nil, repository.ErrGuestNotFound
	}
	c := *g

	return &c, nil
}

func (r *memGuestRepo) Delete(_ context.Context, id uuid.UUID) error {
	defer r.f.lock()()
	if _, ok := r.f.store.guests[id]; !ok {
		return repository.ErrGuestNotFound
	}
	delete(r.f.store.guests, id)

	return nil
}

// --- catalog ---

type memVariantRepo struct{ f *memFactory }

func (r *memVariantRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.ProductVariant, error) {
	defer r.f.lock()()
	v, ok := r.f.store.variants[id]
	if !ok {
		return nil, repository.ErrVariantNotFound
	}
	c := *v

	return &c, nil
}

type memCouponRepo struct{ f *memFactory }

func (r *memCouponRepo) FindByCode(_ context.Context, code string) (*entity.Coupon, error) {
	defer r.f.lock()()
	c, ok := r.f.store.coupons[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, repository.ErrCouponNotFound
	}
	cc := *c

	return &cc, nil
}

// --- wishlist ---

type memWishlistRepo struct{ f *memFactory }

func (r *memWishlistRepo) find(userID, productID uuid.UUID) *entity.WishlistItem {
	for _, w := range r.f.store.wishlist {
		if w.UserID == userID && w.ProductID == productID {
			return w
		}
	}

	return nil
}

func (r *memWishlistRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*entity.WishlistItem, error) {
	defer r.f.lock()()
	s := r.f.store
	if err := s.fail("ListWishlist"); err != nil {
		return nil, err
	}
	var out []*entity.WishlistItem
	for _, w := range s.wishlist {
		if w.UserID != userID {
			continue
		}
		c := *w
		if p, ok := s.products[w.ProductID]; ok {
			pc := *p
			c.Product = &pc
		}
		var first *entity.ProductVariant
		for _, v := range s.variants {
			if v.ProductID == w.ProductID && (first == nil || v.ID.String() < first.ID.String()) {
				first = v
			}
		}
		if first != nil {
			vc := *first
			c.Variant = &vc
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })

	return out, nil
}

func (r *memWishlistRepo) Add(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	defer r.f.lock()()
	s := r.f.store
	if err := s.fail("AddWishlist"); err != nil {
		return false, err
	}
	if _, ok := s.products[productID]; !ok {
		return false, repository.ErrProductNotFound
	}
	if r.find(userID, productID) != nil {
		return false, nil
	}
	w := &entity.WishlistItem{ID: uuid.New(), UserID: userID, ProductID: productID, AddedAt: s.tick()}
	s.wishlist[w.ID] = w

	return true, nil
}

func (r *memWishlistRepo) Remove(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	defer r.f.lock()()
	w := r.find(userID, productID)
	if w == nil {
		return false, nil
	}
	delete(r.f.store.wishlist, w.ID)

	return true, nil
}

func (r *memWishlistRepo) Exists(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	defer r.f.lock()()

	return r.find(userID, productID) != nil, nil
}

// --- orders ---

type memOrderRepo struct{ f *memFactory }

func (r *memOrderRepo) Create(_ context.Context, order *entity.Order) error {
	defer r.f.lock()()
	s := r.f.store
	for _, o := range s.orders {
		if o.SessionRef == order.SessionRef {
			return repository.ErrDuplicateOrder
		}
	}
	order.ID = uuid.New()
	order.CreatedAt = s.tick()
	order.UpdatedAt = order.CreatedAt
	for _, item := range order.Items {
		item.ID = uuid.New()
		item.OrderID = order.ID
	}
	c := *order
	s.orders[order.ID] = &c

	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	defer r.f.lock()()
	o, ok := r.f.store.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	c := *o

	return &c, nil
}

func (r *memOrderRepo) FindBySessionRef(_ context.Context, sessionRef string) (*entity.Order, error) {
	defer r.f.lock()()
	for _, o := range r.f.store.orders {
		if o.SessionRef == sessionRef {
			c := *o

			return &c, nil
		}
	}

	return nil, repository.ErrOrderNotFound
}

func (r *memOrderRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	defer r.f.lock()()
	var out []*entity.Order
	for _, o := range r.f.store.orders {
		if o.BelongsTo(userID) {
			c := *o
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.OrderStatus) error {
	defer r.f.lock()()
	o, ok := r.f.store.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != from {
		return repository.ErrStatusChanged
	}
	o.Status = to

	return nil
}

// --- users ---

type memUserRepo struct{ f *memFactory }

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	defer r.f.lock()()
	u, ok := r.f.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u

	return &c, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	defer r.f.lock()()
	for _, u := range r.f.store.users {
		if u.Email == email {
			c := *u

			return &c, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	defer r.f.lock()()
	user.ID = uuid.New()
	user.CreatedAt = r.f.store.tick()
	c := *user
	r.f.store.users[user.ID] = &c

	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	defer r.f.lock()()
	if _, ok := r.f.store.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	c := *user
	r.f.store.users[user.ID] = &c

	return nil
}

type memAuthRepo struct{ f *memFactory }

func (r *memAuthRepo) CreateAuthentication(_ context.Context, auth *entity.Authentication) error {
	defer r.f.lock()()
	auth.ID = uuid.New()
	c := *auth
	r.f.store.auths[auth.ID] = &c

	return nil
}

func (r *memAuthRepo) FindAuthentication(_ context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error) {
	defer r.f.lock()()
	for _, a := range r.f.store.auths {
		if a.Provider == provider && a.ProviderUserID == providerUserID {
			c := *a

			return &c, nil
		}
	}

	return nil, repository.ErrAuthNotFound
}

type memRefreshRepo struct{ f *memFactory }

func (r *memRefreshRepo) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	defer r.f.lock()()
	token.ID = uuid.New()
	c := *token
	r.f.store.refreshTokens[token.ID] = &c

	return nil
}

func (r *memRefreshRepo) FindRefreshTokenByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	defer r.f.lock()()
	for _, t := range r.f.store.refreshTokens {
		if t.TokenHash == tokenHash {
			c := *t

			return &c, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *memRefreshRepo) DeleteRefreshToken(_ context.Context, id uuid.UUID) error {
	defer r.f.lock()()
	delete(r.f.store.refreshTokens, id)

	return nil
}

func (r *memRefreshRepo) DeleteRefreshTokenByHash(_ context.Context, tokenHash string) error {
	defer r.f.lock()()
	for id, t := range r.f.store.refreshTokens {
		if t.TokenHash == tokenHash {
			delete(r.f.store.refreshTokens, id)

			return nil
		}
	}

	return repository.ErrRefreshTokenNotFound
}

func (r *memRefreshRepo) DeleteRefreshTokensByUserID(_ context.Context, userID uuid.UUID) error {
	defer r.f.lock()()
	for id, t := range r.f.store.refreshTokens {
		if t.UserID == userID {
			delete(r.f.store.refreshTokens, id)
		}
	}

	return nil
}

func (r *memRefreshRepo) DeleteExpiredRefreshTokens(_ context.Context) error {
	defer r.f.lock()()
	for id, t := range r.f.store.refreshTokens {
		if t.ExpiresAt.Before(r.f.store.clock) {
			delete(r.f.store.refreshTokens, id)
		}
	}

	return nil
}
