package wishlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// fakeStore keeps wishlist items in memory with the same uniqueness
// rules as the real table.
type fakeStore struct {
	items  map[uint]*Item
	nextID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[uint]*Item), nextID: 1}
}

func (f *fakeStore) Find(ctx context.Context, email string, productID uint) (*Item, error) {
	for _, item := range f.items {
		if item.Email == email && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "wishlist item not found")
}

func (f *fakeStore) Create(ctx context.Context, item *Item) error {
	if _, err := f.Find(ctx, item.Email, item.ProductID); err == nil {
		return apperrors.New(apperrors.KindConflict, "wishlist item already exists")
	}
	item.ID = f.nextID
	f.nextID++
	f.items[item.ID] = item
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id uint) error {
	delete(f.items, id)
	return nil
}

func (f *fakeStore) ListByEmail(ctx context.Context, email string) ([]Item, error) {
	var out []Item
	for _, item := range f.items {
		if item.Email == email {
			out = append(out, *item)
		}
	}
	return out, nil
}

type stubCatalog struct {
	products map[uint]*product.Product
}

func (s *stubCatalog) GetProduct(ctx context.Context, id uint) (*product.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, apperrors.New(apperrors.KindNotFound, "product not found")
}

func newTestService(store Store) *Service {
	catalog := &stubCatalog{products: map[uint]*product.Product{
		7: {ID: 7, Name: "Poster", Price: 2500},
	}}
	return NewService(store, catalog)
}

func TestToggle_DoubleToggleRestoresState(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	in, err := svc.Contains(ctx, "jo@example.com", 7)
	require.NoError(t, err)
	require.False(t, in)

	resp, err := svc.Toggle(ctx, &ToggleRequest{Email: "jo@example.com", ProductID: 7})
	require.NoError(t, err)
	assert.True(t, resp.InWishlist)

	in, err = svc.Contains(ctx, "jo@example.com", 7)
	require.NoError(t, err)
	assert.True(t, in)

	resp, err = svc.Toggle(ctx, &ToggleRequest{Email: "jo@example.com", ProductID: 7})
	require.NoError(t, err)
	assert.False(t, resp.InWishlist)

	// Back where we started: not in the wishlist, no leftover rows.
	in, err = svc.Contains(ctx, "jo@example.com", 7)
	require.NoError(t, err)
	assert.False(t, in)

	items, err := svc.List(ctx, "jo@example.com")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestToggle_UnknownProduct(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Toggle(context.Background(), &ToggleRequest{Email: "jo@example.com", ProductID: 99})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestToggle_ConcurrentInsertStillInWishlist(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	// Another request wins the insert between Find and Create.
	raced := &conflictOnCreateStore{fakeStore: store}
	svc = newTestService(raced)

	resp, err := svc.Toggle(ctx, &ToggleRequest{Email: "jo@example.com", ProductID: 7})
	require.NoError(t, err)
	assert.True(t, resp.InWishlist)
}

// conflictOnCreateStore simulates losing the insert race once.
type conflictOnCreateStore struct {
	*fakeStore
}

func (c *conflictOnCreateStore) Create(ctx context.Context, item *Item) error {
	return apperrors.New(apperrors.KindConflict, "wishlist item already exists")
}
