package routes_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"campus_essentials/internal/repository"
	"campus_essentials/models"
)

// In-memory stores satisfying the service ports, for exercising the HTTP and
// realtime surface without a database.

type memStore struct {
	mu        sync.Mutex
	users     map[uint]*models.User
	listings  map[uint]*models.Listing
	convs     map[uint]*models.Conversation
	convByKey map[string]uint
	messages  map[uint][]models.Message
	orders    map[uint]*models.Order
	nextID    uint
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uint]*models.User{},
		listings:  map[uint]*models.Listing{},
		convs:     map[uint]*models.Conversation{},
		convByKey: map[string]uint{},
		messages:  map[uint][]models.Message{},
		orders:    map[uint]*models.Order{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.id()
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memUsers) Search(_ context.Context, q string, excludeID uint, limit int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q = strings.ToLower(q)
	var out []models.User
	for _, u := range r.users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(u.Email, q) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memUsers) List(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memListings struct{ *memStore }

func (r memListings) Create(_ context.Context, l *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.id()
	l.CreatedAt = time.Now()
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r memListings) GetByID(_ context.Context, id uint) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r memListings) sorted(keep func(*models.Listing) bool) []models.Listing {
	out := []models.Listing{}
	for _, l := range r.listings {
		if keep(l) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memListings) Browse(_ context.Context, f repository.ListingFilter) ([]models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(f.Query)
	out := r.sorted(func(l *models.Listing) bool {
		switch {
		case l.IsSold && !f.IncludeSold:
			return false
		case f.Category != "" && l.Category != f.Category:
			return false
		case f.MinPrice != nil && l.Price.LessThan(*f.MinPrice):
			return false
		case f.MaxPrice != nil && l.Price.GreaterThan(*f.MaxPrice):
			return false
		case q != "" && !strings.Contains(strings.ToLower(l.Title+" "+l.Description), q):
			return false
		}
		return true
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memListings) ListBySeller(_ context.Context, sellerID uint) ([]models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(l *models.Listing) bool { return l.SellerID == sellerID }), nil
}

func (r memListings) ListAll(_ context.Context) ([]models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(*models.Listing) bool { return true }), nil
}

func (r memListings) MarkSold(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.IsSold = true
	return nil
}

func (r memListings) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r memListings) Categories(_ context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(models.ListingCategories))
	for i, name := range models.ListingCategories {
		out = append(out, models.Category{ID: uint(i + 1), Name: name, Slug: models.Slugify(name)})
	}
	return out, nil
}

type memConversations struct{ *memStore }

func (r memConversations) GetOrCreate(_ context.Context, a, b uint, listingID *uint) (*models.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := models.ConversationKey(a, b, listingID)
	if id, ok := r.convByKey[key]; ok {
		return r.load(id), false, nil
	}
	now := time.Now()
	conv := &models.Conversation{ID: r.id(), PairKey: key, ListingID: listingID, CreatedAt: now, UpdatedAt: now}
	for _, uid := range []uint{a, b} {
		conv.Members = append(conv.Members, models.ConversationMember{ConversationID: conv.ID, UserID: uid, JoinedAt: now})
	}
	r.convs[conv.ID] = conv
	r.convByKey[key] = conv.ID
	return r.load(conv.ID), true, nil
}

// load copies a conversation with member users attached. Caller holds mu.
func (r memConversations) load(id uint) *models.Conversation {
	conv := *r.convs[id]
	conv.Members = append([]models.ConversationMember(nil), conv.Members...)
	sort.Slice(conv.Members, func(i, j int) bool { return conv.Members[i].UserID < conv.Members[j].UserID })
	for i := range conv.Members {
		if u, ok := r.users[conv.Members[i].UserID]; ok {
			cp := *u
			conv.Members[i].User = &cp
		}
	}
	return &conv
}

func (r memConversations) GetByID(_ context.Context, id uint) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.convs[id]; !ok {
		return nil, repository.ErrNotFound
	}
	return r.load(id), nil
}

func (r memConversations) ListForUser(_ context.Context, userID uint) ([]models.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ConversationSummary{}
	for id := range r.convs {
		conv := r.load(id)
		if !conv.HasMember(userID) {
			continue
		}
		sum := models.ConversationSummary{ID: conv.ID, ListingID: conv.ListingID, UpdatedAt: conv.UpdatedAt}
		for _, m := range conv.Members {
			if m.UserID != userID && m.User != nil {
				sum.OtherUserID, sum.OtherUserName = m.UserID, m.User.Name
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

type memMessages struct{ *memStore }

func (r memMessages) Append(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[msg.ConversationID]
	if !ok {
		return repository.ErrNotFound
	}
	ts := time.Now().UTC().Truncate(time.Microsecond)
	if prior := r.messages[msg.ConversationID]; len(prior) > 0 {
		if last := prior[len(prior)-1].CreatedAt; !ts.After(last) {
			ts = last.Add(time.Microsecond)
		}
	}
	msg.ID = r.id()
	msg.CreatedAt = ts
	conv.UpdatedAt = ts
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], *msg)
	return nil
}

func (r memMessages) ListByConversation(_ context.Context, conversationID uint) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Message{}, r.messages[conversationID]...), nil
}

type memOrders struct{ *memStore }

func (r memOrders) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.id()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r memOrders) GetByID(_ context.Context, id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r memOrders) GetByChargeID(_ context.Context, chargeID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ProviderChargeID == chargeID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memOrders) AttachCharge(_ context.Context, id uint, chargeID, authorizeURI string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.ProviderChargeID, o.AuthorizeURI = chargeID, authorizeURI
	return nil
}

func (r memOrders) Transition(_ context.Context, id uint, to models.OrderStatus, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if o.Status != models.OrderCreated {
		return false, nil
	}
	o.Status, o.FailureReason = to, reason
	return true, nil
}
