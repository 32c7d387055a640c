package pantry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	s := NewService(DefaultMenu())
	s.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	s.newID = func() string { return "order-1" }
	return s
}

func TestDefaultMenu(t *testing.T) {
	menu := DefaultMenu()
	assert.Len(t, menu.Meals, 4)
	assert.Len(t, menu.Snacks, 4)
	assert.Len(t, menu.Beverages, 4)
	assert.Len(t, menu.Items(), 12)

	item, ok := menu.Lookup("chicken-biryani")
	require.True(t, ok)
	assert.Equal(t, 260, item.Price)
	assert.False(t, item.Veg)
	assert.Equal(t, "COMPLETE MEAL", item.Category.Label())

	_, ok = menu.Lookup("pizza")
	assert.False(t, ok)

	menu.Meals[0].Price = 1
	again, _ := DefaultMenu().Lookup("veg-meal")
	assert.Equal(t, 180, again.Price, "DefaultMenu must return a copy")
}

func TestPlaceOrder(t *testing.T) {
	s := newTestService()

	order, err := s.PlaceOrder(OrderRequest{
		TrainNumber: " 12951 ",
		Seat:        "B2-34",
		Items: []CartLine{
			{ItemID: "veg-meal", Quantity: 2},
			{ItemID: "tea", Quantity: 1},
			{ItemID: "veg-meal", Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "12951", order.TrainNumber)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "veg-meal", order.Lines[0].Item.ID)
	assert.Equal(t, 3, order.Lines[0].Quantity)
	assert.Equal(t, 540, order.Lines[0].Subtotal)
	assert.Equal(t, 4, order.ItemCount)
	assert.Equal(t, 555, order.Total)
}

func TestPlaceOrderErrors(t *testing.T) {
	tests := []struct {
		name string
		req  OrderRequest
		err  error
	}{
		{
			name: "Missing seat",
			req:  OrderRequest{TrainNumber: "12951", Items: []CartLine{{ItemID: "tea", Quantity: 1}}},
			err:  ErrMissingDelivery,
		},
		{
			name: "Blank train",
			req:  OrderRequest{TrainNumber: "  ", Seat: "S1", Items: []CartLine{{ItemID: "tea", Quantity: 1}}},
			err:  ErrMissingDelivery,
		},
		{
			name: "Empty cart",
			req:  OrderRequest{TrainNumber: "12951", Seat: "S1"},
			err:  ErrEmptyCart,
		},
		{
			name: "Zero quantity",
			req:  OrderRequest{TrainNumber: "12951", Seat: "S1", Items: []CartLine{{ItemID: "tea", Quantity: 0}}},
			err:  ErrInvalidQuantity,
		},
	}

	s := newTestService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := s.PlaceOrder(tt.req)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	_, err := newTestService().PlaceOrder(OrderRequest{
		TrainNumber: "12951",
		Seat:        "S1",
		Items:       []CartLine{{ItemID: "pizza", Quantity: 1}},
	})

	var unknown *UnknownItemError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "pizza", unknown.ID)
}

func TestOrderIDsAreUUIDs(t *testing.T) {
	s := NewService(DefaultMenu())
	req := OrderRequest{TrainNumber: "12951", Seat: "S1", Items: []CartLine{{ItemID: "water", Quantity: 1}}}

	a, err := s.PlaceOrder(req)
	require.NoError(t, err)
	b, err := s.PlaceOrder(req)
	require.NoError(t, err)

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}
