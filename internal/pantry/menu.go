// Package pantry holds the pantry-car catalogue and prices food orders.
package pantry

// Category groups menu items
type Category string

const (
	CategoryMeals     Category = "meals"
	CategorySnacks    Category = "snacks"
	CategoryBeverages Category = "beverages"
)

// Label is the badge shown on items of the category
func (c Category) Label() string {
	switch c {
	case CategoryMeals:
		return "COMPLETE MEAL"
	case CategorySnacks:
		return "SNACK"
	default:
		return "BEVERAGE"
	}
}

// Item is one orderable dish. Prices are whole rupees.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int      `json:"price"`
	Description string   `json:"description"`
	Veg         bool     `json:"veg"`
	Category    Category `json:"category"`
}

// Menu is the catalogue grouped by category
type Menu struct {
	Meals     []Item `json:"meals"`
	Snacks    []Item `json:"snacks"`
	Beverages []Item `json:"beverages"`
}

var defaultMenu = Menu{
	Meals: []Item{
		{ID: "veg-meal", Name: "Vegetarian Thali", Price: 180, Description: "Complete meal with rice, dal, vegetables, roti, pickle & papad", Veg: true, Category: CategoryMeals},
		{ID: "chicken-meal", Name: "Chicken Thali", Price: 220, Description: "Rice, chicken curry, dal, roti", Veg: false, Category: CategoryMeals},
		{ID: "biryani", Name: "Veg Biryani", Price: 150, Description: "Aromatic basmati rice with mixed vegetables and spices", Veg: true, Category: CategoryMeals},
		{ID: "chicken-biryani", Name: "Chicken Biryani", Price: 260, Description: "Fragrant rice layered with marinated chicken", Veg: false, Category: CategoryMeals},
	},
	Snacks: []Item{
		{ID: "samosa", Name: "Samosa (2 pcs)", Price: 30, Description: "Crispy fried pastry with potato filling", Veg: true, Category: CategorySnacks},
		{ID: "sandwich", Name: "Veg Sandwich", Price: 50, Description: "Grilled sandwich with vegetables", Veg: true, Category: CategorySnacks},
		{ID: "pakoda", Name: "Onion Pakoda", Price: 40, Description: "Assorted onion fritters, crispy and spicy", Veg: true, Category: CategorySnacks},
		{ID: "chips", Name: "Chips", Price: 20, Description: "Crispy potato chips", Veg: true, Category: CategorySnacks},
	},
	Beverages: []Item{
		{ID: "tea", Name: "Masala Tea", Price: 15, Description: "Hot spiced milk tea", Veg: true, Category: CategoryBeverages},
		{ID: "coffee", Name: "Coffee", Price: 20, Description: "Freshly brewed coffee", Veg: true, Category: CategoryBeverages},
		{ID: "cold-drink", Name: "Cold Drink", Price: 25, Description: "Chilled soft drink", Veg: true, Category: CategoryBeverages},
		{ID: "water", Name: "Water Bottle", Price: 15, Description: "500ml packaged drinking water", Veg: true, Category: CategoryBeverages},
	},
}

// DefaultMenu returns a copy of the built-in catalogue
func DefaultMenu() Menu {
	return Menu{
		Meals:     append([]Item(nil), defaultMenu.Meals...),
		Snacks:    append([]Item(nil), defaultMenu.Snacks...),
		Beverages: append([]Item(nil), defaultMenu.Beverages...),
	}
}

// Items lists every item in catalogue order
func (m Menu) Items() []Item {
	items := make([]Item, 0, len(m.Meals)+len(m.Snacks)+len(m.Beverages))
	items = append(items, m.Meals...)
	items = append(items, m.Snacks...)
	items = append(items, m.Beverages...)
	return items
}

// Lookup finds an item by id
func (m Menu) Lookup(id string) (Item, bool) {
	for _, item := range m.Items() {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}
