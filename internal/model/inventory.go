package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is a stock-tracked catalogue item with one running balance and average cost
type Ingredient struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Category      string      `gorm:"type:varchar(20);not null;index" json:"category"`
	Unit          string      `gorm:"type:varchar(20);not null;default:'кг'" json:"unit"`
	CurrentStock  float64     `gorm:"type:decimal(12,3);not null;default:0" json:"current_stock"`
	MinStock      float64     `gorm:"type:decimal(12,3);not null;default:0" json:"min_stock"`
	PurchasePrice float64     `gorm:"type:decimal(14,4);not null;default:0" json:"purchase_price"` // weighted average
	StockItems    []StockItem `gorm:"foreignKey:IngredientID" json:"stock_items,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (i *Ingredient) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// StockItem is one physical receipt (batch) of an ingredient
type StockItem struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	IngredientID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"ingredient_id"`
	Ingredient     *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
	Quantity       float64     `gorm:"type:decimal(12,3);not null" json:"quantity"` // = net weight at intake
	Unit           string      `gorm:"type:varchar(20);not null" json:"unit"`
	GrossWeight    *float64    `gorm:"type:decimal(12,3)" json:"gross_weight"`
	NetWeight      *float64    `gorm:"type:decimal(12,3)" json:"net_weight"`
	WastagePercent *float64    `gorm:"type:decimal(6,2)" json:"wastage_percent"`
	PurchasePrice  *float64    `gorm:"type:decimal(12,2)" json:"purchase_price"`
	TotalPrice     *float64    `gorm:"type:decimal(14,2)" json:"total_price"`
	Supplier       *string     `gorm:"type:varchar(255)" json:"supplier"`
	ReceivedDate   time.Time   `gorm:"not null;index" json:"received_date"`
	ExpiryDate     *time.Time  `json:"expiry_date"`
	Notes          *string     `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (s *StockItem) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Movement types
const (
	MovementArrival  = "ARRIVAL"
	MovementWriteOff = "WRITE_OFF"
)

// StockMovement is an append-only ledger entry. IngredientName is a snapshot,
// not a foreign key, so history survives renames and deletions.
type StockMovement struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Type           string     `gorm:"type:varchar(20);not null;index" json:"type"`
	IngredientName string     `gorm:"type:varchar(255);not null;index" json:"ingredient_name"`
	Quantity       float64    `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Unit           string     `gorm:"type:varchar(20);not null" json:"unit"`
	Price          *float64   `gorm:"type:decimal(12,2)" json:"price"`
	Supplier       *string    `gorm:"type:varchar(255)" json:"supplier"`
	Notes          *string    `gorm:"type:text" json:"notes"`
	CreatedByID    *uuid.UUID `gorm:"type:uuid;index" json:"created_by_id"`
	CreatedBy      string     `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// StockMovement rows are never updated.
func (m *StockMovement) BeforeUpdate(_ *gorm.DB) error {
	return ErrImmutableMovement
}
