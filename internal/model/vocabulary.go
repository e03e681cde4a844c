package model

import "errors"

var ErrImmutableMovement = errors.New("stock movements are append-only")

// Ingredient categories
const (
	CategoryFish       = "FISH"
	CategorySeafood    = "SEAFOOD"
	CategoryRice       = "RICE"
	CategoryVegetables = "VEGETABLES"
	CategorySeaweed    = "SEAWEED"
	CategorySauces     = "SAUCES"
	CategoryCheese     = "CHEESE"
	CategorySeasonings = "SEASONINGS"
	CategoryPackaging  = "PACKAGING"
	CategoryOther      = "OTHER"
)

// Order statuses. No transition rules are enforced between them.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusConfirmed  = "CONFIRMED"
	OrderStatusPreparing  = "PREPARING"
	OrderStatusReady      = "READY"
	OrderStatusDelivering = "DELIVERING"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
)

// Label is a code with its display name, in declaration order
type Label struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var ingredientCategories = []Label{
	{CategoryFish, "Рыба"},
	{CategorySeafood, "Морепродукты"},
	{CategoryRice, "Рис"},
	{CategoryVegetables, "Овощи"},
	{CategorySeaweed, "Водоросли"},
	{CategorySauces, "Соусы"},
	{CategoryCheese, "Сыры"},
	{CategorySeasonings, "Приправы"},
	{CategoryPackaging, "Упаковка"},
	{CategoryOther, "Прочее"},
}

var orderStatuses = []Label{
	{OrderStatusPending, "Ожидает"},
	{OrderStatusConfirmed, "Подтвержден"},
	{OrderStatusPreparing, "Готовится"},
	{OrderStatusReady, "Готов"},
	{OrderStatusDelivering, "Доставляется"},
	{OrderStatusDelivered, "Доставлен"},
	{OrderStatusCancelled, "Отменен"},
}

var movementTypes = []Label{
	{MovementArrival, "Приход"},
	{MovementWriteOff, "Списание"},
}

// IngredientCategories returns a copy of the category table
func IngredientCategories() []Label { return append([]Label(nil), ingredientCategories...) }

// OrderStatuses returns a copy of the order status table
func OrderStatuses() []Label { return append([]Label(nil), orderStatuses...) }

// MovementTypes returns a copy of the movement type table
func MovementTypes() []Label { return append([]Label(nil), movementTypes...) }

func lookup(table []Label, code string) (string, bool) {
	for _, l := range table {
		if l.Code == code {
			return l.Label, true
		}
	}
	return code, false
}

// CategoryLabel falls back to the code itself for unknown values
func CategoryLabel(code string) string {
	label, _ := lookup(ingredientCategories, code)
	return label
}

func OrderStatusLabel(code string) string {
	label, _ := lookup(orderStatuses, code)
	return label
}

func MovementTypeLabel(code string) string {
	label, _ := lookup(movementTypes, code)
	return label
}

func IsValidCategory(code string) bool {
	_, ok := lookup(ingredientCategories, code)
	return ok
}

func IsValidOrderStatus(code string) bool {
	_, ok := lookup(orderStatuses, code)
	return ok
}

func IsValidMovementType(code string) bool {
	_, ok := lookup(movementTypes, code)
	return ok
}
