package models

// Beverage represents one tracked product in the inventory
type Beverage struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURI  string  `json:"imageUri,omitempty"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// ActionType represents the kind of stock change recorded in the history log
type ActionType string

const (
	ActionAdd     ActionType = "add"
	ActionConsume ActionType = "consume"
)

// InventoryAction is an immutable audit record of a stock change. The
// beverage name is a snapshot taken at action time and is intentionally
// not kept in sync with later renames or deletions.
type InventoryAction struct {
	ID           string     `json:"id"`
	BeverageID   string     `json:"beverageId"`
	BeverageName string     `json:"beverageName"`
	ActionType   ActionType `json:"actionType"`
	Quantity     int        `json:"quantity"`
	Timestamp    int64      `json:"timestamp"`
}

// StockLevel represents the classification bucket of a beverage's quantity
type StockLevel string

const (
	// Stock levels
	StockOut    StockLevel = "out"
	StockLow    StockLevel = "low"
	StockMedium StockLevel = "medium"
	StockNormal StockLevel = "normal"
)

// BeverageTypes is the fixed category list a beverage must belong to.
var BeverageTypes = []string{
	"Läsk",
	"Vatten",
	"Juice",
	"Energidryck",
	"Te",
	"Kaffe",
	"Mjölk",
	"Öl",
	"Cider",
	"Annan",
}

// ValidBeverageType reports whether t is one of the known categories.
func ValidBeverageType(t string) bool {
	for _, known := range BeverageTypes {
		if t == known {
			return true
		}
	}
	return false
}
