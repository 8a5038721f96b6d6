package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of equipment categories.
type Category string

const (
	CategorySingleBoardComputer Category = "SINGLE_BOARD_COMPUTER"
	CategorySensors             Category = "SENSORS"
	CategoryMicrocontroller     Category = "MICROCONTROLLER"
	CategoryDevelopmentBoard    Category = "DEVELOPMENT_BOARD"
	CategoryCables              Category = "CABLES"
	CategoryTools               Category = "TOOLS"
	CategoryPowerSupply         Category = "POWER_SUPPLY"
	CategoryStorage             Category = "STORAGE"
	CategoryOther               Category = "OTHER"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategorySingleBoardComputer,
		CategorySensors,
		CategoryMicrocontroller,
		CategoryDevelopmentBoard,
		CategoryCables,
		CategoryTools,
		CategoryPowerSupply,
		CategoryStorage,
		CategoryOther,
	}
}

// CategoryFromString coerces arbitrary input to a known category. Unknown,
// empty or nil-ish values become OTHER rather than failing validation; the
// permissiveness is intentional.
func CategoryFromString(s string) Category {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return known
		}
	}
	return CategoryOther
}

// Equipment mirrors the 'equipment' table.
type Equipment struct {
	ID            uint64          `json:"id"`
	Name          string          `json:"name"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	Description   string          `json:"description"`
	Category      Category        `json:"category"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
