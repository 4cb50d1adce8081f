package cart

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStorage records saves and can fail on demand.
type mockStorage struct {
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (m *mockStorage) Load() ([]byte, error) {
	return m.data, m.loadErr
}

func (m *mockStorage) Save(data []byte) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = data
	return nil
}

func newTestItem(id int, price, pct string, stock int) Item {
	return Item{
		ID:                 id,
		Title:              "item",
		Price:              decimal.RequireFromString(price),
		DiscountPercentage: decimal.RequireFromString(pct),
		Stock:              stock,
	}
}

func TestAdd_NewItemStartsAtOne(t *testing.T) {
	s := NewStore(nil, nil)

	s.Add(newTestItem(1, "10.00", "0", 5))

	state := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 1, state.Items[0].Quantity)
	assert.Equal(t, 1, state.ItemCount)
}

func TestAdd_SameIDIncrementsQuantity(t *testing.T) {
	s := NewStore(nil, nil)
	it := newTestItem(1, "100", "10", 5)

	s.Add(it)
	s.Add(it)

	state := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.ItemCount)
	assert.True(t, decimal.RequireFromString("180").Equal(state.Total),
		"got total %s", state.Total)
}

func TestAdd_SilentlyCappedAtStock(t *testing.T) {
	s := NewStore(nil, nil)
	it := newTestItem(1, "10", "0", 2)

	s.Add(it)
	s.Add(it)
	s.Add(it) // already at stock, no-op

	state := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Quantity)
}

func TestRemove(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add(newTestItem(1, "10", "0", 5))
	s.Add(newTestItem(2, "20", "0", 5))

	s.Remove(1)

	state := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].ID)

	// Absent ID is a no-op, not an error.
	s.Remove(99)
	assert.Len(t, s.Snapshot().Items, 1)
}

func TestUpdateQuantity_ClampsToStock(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add(newTestItem(1, "10", "0", 5))

	s.UpdateQuantity(1, 10) // stock+5

	state := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 5, state.Items[0].Quantity)
	assert.Equal(t, 5, state.ItemCount)
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add(newTestItem(1, "10", "0", 5))

	s.UpdateQuantity(1, 0)

	state := s.Snapshot()
	assert.Empty(t, state.Items)
	assert.Equal(t, 0, state.ItemCount)
	assert.True(t, decimal.Zero.Equal(state.Total))
}

func TestUpdateQuantity_AbsentIDNoop(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add(newTestItem(1, "10", "0", 5))

	s.UpdateQuantity(42, 3)

	state := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 1, state.Items[0].Quantity)
}

func TestClear(t *testing.T) {
	s := NewStore(nil, nil)
	s.Add(newTestItem(1, "10", "0", 5))
	s.Add(newTestItem(2, "99.99", "25", 3))

	s.Clear()

	state := s.Snapshot()
	assert.Empty(t, state.Items)
	assert.Equal(t, 0, state.ItemCount)
	assert.True(t, decimal.Zero.Equal(state.Total))
}

func TestTotalsAlwaysDerived(t *testing.T) {
	s := NewStore(nil, nil)
	a := newTestItem(1, "100", "10", 5)
	b := newTestItem(2, "20", "0", 10)

	s.Add(a)
	s.Add(a)
	s.Add(b)
	s.UpdateQuantity(2, 3)
	s.Remove(1)

	state := s.Snapshot()
	wantTotal := decimal.Zero
	wantCount := 0
	for _, it := range state.Items {
		wantTotal = wantTotal.Add(it.LineTotal())
		wantCount += it.Quantity
	}
	assert.True(t, wantTotal.Equal(state.Total))
	assert.Equal(t, wantCount, state.ItemCount)
}

func TestDiscountedPrice(t *testing.T) {
	got := DiscountedPrice(decimal.RequireFromString("100"), decimal.RequireFromString("10"))
	assert.True(t, decimal.RequireFromString("90").Equal(got), "got %s", got)

	// No discount passes the price through.
	got = DiscountedPrice(decimal.RequireFromString("19.99"), decimal.Zero)
	assert.True(t, decimal.RequireFromString("19.99").Equal(got))
}

func TestPersistAfterEveryMutation(t *testing.T) {
	storage := &mockStorage{}
	s := NewStore(storage, nil)

	s.Add(newTestItem(1, "10", "0", 5))
	s.UpdateQuantity(1, 3)
	s.Remove(1)
	s.Clear()

	assert.Equal(t, 4, storage.saves)
}

func TestPersistFailureSwallowed(t *testing.T) {
	storage := &mockStorage{saveErr: errors.New("disk full")}
	s := NewStore(storage, nil)

	s.Add(newTestItem(1, "10", "0", 5))

	// The mutation itself still lands.
	assert.Equal(t, 1, s.Snapshot().ItemCount)
}

func TestRehydrate(t *testing.T) {
	seed := NewStore(&mockStorage{}, nil)
	seed.Add(newTestItem(1, "100", "10", 5))
	seed.Add(newTestItem(1, "100", "10", 5))

	storage := &mockStorage{data: encodeItems(seed.Snapshot().Items)}
	s := NewStore(storage, nil)

	state := s.Snapshot()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.ItemCount)
	assert.True(t, decimal.RequireFromString("180").Equal(state.Total))
}

func TestRehydrate_ReadFailureFallsBackToEmpty(t *testing.T) {
	s := NewStore(&mockStorage{loadErr: errors.New("io error")}, nil)
	assert.Empty(t, s.Snapshot().Items)
}

func TestRehydrate_CorruptDataFallsBackToEmpty(t *testing.T) {
	s := NewStore(&mockStorage{data: []byte("{not json")}, nil)
	assert.Empty(t, s.Snapshot().Items)
}

func TestItemsRoundTrip(t *testing.T) {
	items := []Item{
		{
			ID:                 7,
			Title:              "Widget",
			Price:              decimal.RequireFromString("19.99"),
			DiscountPercentage: decimal.RequireFromString("12.5"),
			Thumbnail:          "https://cdn.example.com/7.jpg",
			Quantity:           2,
			Stock:              9,
		},
	}

	got, err := decodeItems(encodeItems(items))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, items[0].ID, got[0].ID)
	assert.Equal(t, items[0].Title, got[0].Title)
	assert.True(t, items[0].Price.Equal(got[0].Price))
	assert.True(t, items[0].DiscountPercentage.Equal(got[0].DiscountPercentage))
	assert.Equal(t, items[0].Quantity, got[0].Quantity)
	assert.Equal(t, items[0].Stock, got[0].Stock)
}
