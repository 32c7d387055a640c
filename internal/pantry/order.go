package pantry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrMissingDelivery = errors.New("please enter both train number and seat number")
	ErrEmptyCart       = errors.New("please add items to your cart before placing order")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// UnknownItemError is returned for a cart line whose id is not on the menu
type UnknownItemError struct {
	ID string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown menu item: %s", e.ID)
}

// CartLine is one requested item
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is what a passenger submits
type OrderRequest struct {
	TrainNumber string     `json:"train_number" validate:"required"`
	Seat        string     `json:"seat" validate:"required"`
	Items       []CartLine `json:"items"`
}

// OrderLine is a priced cart line
type OrderLine struct {
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
	Subtotal int  `json:"subtotal"`
}

// Order is a priced order. It is returned to the caller and never stored.
type Order struct {
	ID          string      `json:"order_id"`
	TrainNumber string      `json:"train_number"`
	Seat        string      `json:"seat"`
	Lines       []OrderLine `json:"lines"`
	ItemCount   int         `json:"item_count"`
	Total       int         `json:"total"`
	PlacedAt    time.Time   `json:"placed_at"`
}

// Service prices orders against a menu
type Service struct {
	menu     Menu
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewService creates a service for menu
func NewService(menu Menu) *Service {
	return &Service{
		menu:     menu,
		validate: validator.New(),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Menu returns the catalogue
func (s *Service) Menu() Menu {
	return s.menu
}

// PlaceOrder validates and prices a request. Lines for the same item are
// merged in first-seen order.
func (s *Service) PlaceOrder(req OrderRequest) (*Order, error) {
	req.TrainNumber = strings.TrimSpace(req.TrainNumber)
	req.Seat = strings.TrimSpace(req.Seat)

	if err := s.validate.Struct(req); err != nil {
		return nil, ErrMissingDelivery
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &Order{
		TrainNumber: req.TrainNumber,
		Seat:        req.Seat,
	}
	index := map[string]int{}
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		item, ok := s.menu.Lookup(line.ItemID)
		if !ok {
			return nil, &UnknownItemError{ID: line.ItemID}
		}

		if i, seen := index[item.ID]; seen {
			order.Lines[i].Quantity += line.Quantity
			order.Lines[i].Subtotal += item.Price * line.Quantity
		} else {
			index[item.ID] = len(order.Lines)
			order.Lines = append(order.Lines, OrderLine{
				Item:     item,
				Quantity: line.Quantity,
				Subtotal: item.Price * line.Quantity,
			})
		}
		order.ItemCount += line.Quantity
		order.Total += item.Price * line.Quantity
	}

	order.ID = s.newID()
	order.PlacedAt = s.now()
	return order, nil
}
