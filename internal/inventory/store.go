package inventory

import (
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dryckeslager/internal/database"
	"dryckeslager/internal/models"
)

var (
	ErrNotFound          = errors.New("beverage not found")
	ErrEmptyName         = errors.New("beverage name must not be empty")
	ErrUnknownType       = errors.New("unknown beverage type")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInsufficientStock = errors.New("insufficient stock quantity")
)

// ThresholdProvider supplies the current stock thresholds. The store reads
// them on every classification query so threshold changes take effect
// immediately, without caching or subscription.
type ThresholdProvider interface {
	Thresholds() (low, medium int)
}

// Persister saves a wholesale snapshot of store state under a fixed key.
type Persister interface {
	Save(key string, state interface{}) error
}

// State is the persisted snapshot layout: the full beverage collection and
// the action history, serialized wholesale after every mutation.
type State struct {
	Beverages []models.Beverage        `json:"beverages"`
	History   []models.InventoryAction `json:"history"`
}

// BeverageInput carries the caller-supplied fields for creating a beverage.
type BeverageInput struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	ImageURI string  `json:"imageUri"`
}

// BeverageUpdate carries the optional fields of a partial edit. Quantity is
// deliberately absent: stock changes go through AddToStorage and
// ConsumeFromStorage so that they are always audited.
type BeverageUpdate struct {
	Name     *string  `json:"name"`
	Type     *string  `json:"type"`
	Price    *float64 `json:"price"`
	ImageURI *string  `json:"imageUri"`
}

// Store is the single source of truth for beverages and the action history.
// All quantity changes flow through its mutation methods; classification
// queries are recomputed from current state on every call.
type Store struct {
	mu        sync.RWMutex
	beverages []models.Beverage
	history   []models.InventoryAction

	thresholds ThresholdProvider
	persister  Persister
	onAction   func(models.InventoryAction)
	log        *logrus.Logger
}

// NewStore creates an inventory store seeded with initial state. The
// persister may be nil, in which case snapshots are skipped.
func NewStore(initial State, thresholds ThresholdProvider, persister Persister, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		beverages:  initial.Beverages,
		history:    initial.History,
		thresholds: thresholds,
		persister:  persister,
		log:        log,
	}
}

// OnAction registers a callback invoked after every recorded stock change.
// The callback runs outside the store lock.
func (s *Store) OnAction(fn func(models.InventoryAction)) {
	s.onAction = fn
}

// AddBeverage creates a new beverage and records an "add" history entry
// carrying the initial quantity. Out-of-range price and quantity values are
// normalized to zero rather than rejected; the form layer may pass garbage.
func (s *Store) AddBeverage(input BeverageInput) (models.Beverage, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Beverage{}, ErrEmptyName
	}
	if !models.ValidBeverageType(input.Type) {
		return models.Beverage{}, ErrUnknownType
	}

	price := input.Price
	if math.IsNaN(price) || price < 0 {
		price = 0
	}
	quantity := input.Quantity
	if quantity < 0 {
		quantity = 0
	}

	now := time.Now().UnixMilli()
	beverage := models.Beverage{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      input.Type,
		Price:     price,
		Quantity:  quantity,
		ImageURI:  input.ImageURI,
		CreatedAt: now,
		UpdatedAt: now,
	}
	action := models.InventoryAction{
		ID:           uuid.NewString(),
		BeverageID:   beverage.ID,
		BeverageName: beverage.Name,
		ActionType:   models.ActionAdd,
		Quantity:     quantity,
		Timestamp:    now,
	}

	s.mu.Lock()
	s.beverages = append(s.beverages, beverage)
	s.history = append([]models.InventoryAction{action}, s.history...)
	s.persistLocked()
	s.mu.Unlock()

	s.emit(action)
	s.log.WithFields(logrus.Fields{"id": beverage.ID, "name": beverage.Name}).Info("beverage added")
	return beverage, nil
}

// UpdateBeverage merges the provided fields over an existing record and
// refreshes its updated-at timestamp. Field edits are not audited; only
// quantity changes produce history entries.
func (s *Store) UpdateBeverage(id string, update BeverageUpdate) (models.Beverage, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return models.Beverage{}, ErrEmptyName
	}
	if update.Type != nil && !models.ValidBeverageType(*update.Type) {
		return models.Beverage{}, ErrUnknownType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Beverage{}, ErrNotFound
	}

	beverage := &s.beverages[i]
	if update.Name != nil {
		beverage.Name = strings.TrimSpace(*update.Name)
	}
	if update.Type != nil {
		beverage.Type = *update.Type
	}
	if update.Price != nil {
		price := *update.Price
		if math.IsNaN(price) || price < 0 {
			price = 0
		}
		beverage.Price = price
	}
	if update.ImageURI != nil {
		beverage.ImageURI = *update.ImageURI
	}
	beverage.UpdatedAt = time.Now().UnixMilli()

	s.persistLocked()
	return *beverage, nil
}

// DeleteBeverage removes the beverage with the given id. History entries
// referencing it are retained; the log outlives the record.
func (s *Store) DeleteBeverage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}

	s.beverages = append(s.beverages[:i], s.beverages[i+1:]...)
	s.persistLocked()
	return nil
}

// AddToStorage restocks a beverage by the given amount and prepends an
// "add" history entry recording the delta.
func (s *Store) AddToStorage(id string, quantity int) (models.Beverage, error) {
	if quantity <= 0 {
		return models.Beverage{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Beverage{}, ErrNotFound
	}

	beverage := &s.beverages[i]
	now := time.Now().UnixMilli()
	beverage.Quantity += quantity
	beverage.UpdatedAt = now

	action := models.InventoryAction{
		ID:           uuid.NewString(),
		BeverageID:   id,
		BeverageName: beverage.Name,
		ActionType:   models.ActionAdd,
		Quantity:     quantity,
		Timestamp:    now,
	}
	s.history = append([]models.InventoryAction{action}, s.history...)
	s.persistLocked()
	result := *beverage
	s.mu.Unlock()

	s.emit(action)
	return result, nil
}

// ConsumeFromStorage removes stock from a beverage and prepends a "consume"
// history entry recording the delta. Consuming more than the current
// quantity is rejected so that stock can never go negative.
func (s *Store) ConsumeFromStorage(id string, quantity int) (models.Beverage, error) {
	if quantity <= 0 {
		return models.Beverage{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Beverage{}, ErrNotFound
	}

	beverage := &s.beverages[i]
	if quantity > beverage.Quantity {
		s.mu.Unlock()
		return models.Beverage{}, ErrInsufficientStock
	}

	now := time.Now().UnixMilli()
	beverage.Quantity -= quantity
	beverage.UpdatedAt = now

	action := models.InventoryAction{
		ID:           uuid.NewString(),
		BeverageID:   id,
		BeverageName: beverage.Name,
		ActionType:   models.ActionConsume,
		Quantity:     quantity,
		Timestamp:    now,
	}
	s.history = append([]models.InventoryAction{action}, s.history...)
	s.persistLocked()
	result := *beverage
	s.mu.Unlock()

	s.emit(action)
	return result, nil
}

// ClearHistory unconditionally replaces the history with an empty
// collection. The beverage collection is unaffected.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.persistLocked()
}

// Beverages returns a copy of the full collection in insertion order.
func (s *Store) Beverages() []models.Beverage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Beverage(nil), s.beverages...)
}

// Beverage returns the record with the given id.
func (s *Store) Beverage(id string) (models.Beverage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Beverage{}, ErrNotFound
	}
	return s.beverages[i], nil
}

// History returns a copy of the action log, most recent first.
func (s *Store) History() []models.InventoryAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.InventoryAction(nil), s.history...)
}

// SearchBeverages returns the beverages whose name or type contains the
// query, case-insensitively. A blank query returns the full collection.
// Results keep insertion order.
func (s *Store) SearchBeverages(query string) []models.Beverage {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == "" {
		return append([]models.Beverage(nil), s.beverages...)
	}

	var matches []models.Beverage
	for _, b := range s.beverages {
		if strings.Contains(strings.ToLower(b.Name), query) ||
			strings.Contains(strings.ToLower(b.Type), query) {
			matches = append(matches, b)
		}
	}
	return matches
}

// StockLevel classifies a quantity against the current thresholds.
func (s *Store) StockLevel(quantity int) models.StockLevel {
	low, medium := s.thresholds.Thresholds()

	switch {
	case quantity == 0:
		return models.StockOut
	case quantity < low:
		return models.StockLow
	case quantity < medium:
		return models.StockMedium
	default:
		return models.StockNormal
	}
}

// OutOfStockBeverages returns the beverages with zero quantity.
func (s *Store) OutOfStockBeverages() []models.Beverage {
	return s.filterByLevel(models.StockOut)
}

// LowStockBeverages returns the beverages classified as low stock.
func (s *Store) LowStockBeverages() []models.Beverage {
	return s.filterByLevel(models.StockLow)
}

// MediumStockBeverages returns the beverages classified as medium stock.
func (s *Store) MediumStockBeverages() []models.Beverage {
	return s.filterByLevel(models.StockMedium)
}

// NormalStockBeverages returns the beverages classified as normal stock.
func (s *Store) NormalStockBeverages() []models.Beverage {
	return s.filterByLevel(models.StockNormal)
}

// BeveragesByLevel returns the beverages in the given classification bucket.
func (s *Store) BeveragesByLevel(level models.StockLevel) []models.Beverage {
	return s.filterByLevel(level)
}

// StockSummary returns the number of beverages in each classification
// bucket, recomputed against current thresholds.
func (s *Store) StockSummary() map[models.StockLevel]int {
	summary := map[models.StockLevel]int{
		models.StockOut:    0,
		models.StockLow:    0,
		models.StockMedium: 0,
		models.StockNormal: 0,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.beverages {
		summary[s.classify(b.Quantity)]++
	}
	return summary
}

func (s *Store) filterByLevel(level models.StockLevel) []models.Beverage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.Beverage
	for _, b := range s.beverages {
		if s.classify(b.Quantity) == level {
			matches = append(matches, b)
		}
	}
	return matches
}

// classify mirrors StockLevel but is safe to call with the lock held; the
// threshold read goes to the settings store, never back into this one.
func (s *Store) classify(quantity int) models.StockLevel {
	low, medium := s.thresholds.Thresholds()

	switch {
	case quantity == 0:
		return models.StockOut
	case quantity < low:
		return models.StockLow
	case quantity < medium:
		return models.StockMedium
	default:
		return models.StockNormal
	}
}

func (s *Store) indexLocked(id string) int {
	for i, b := range s.beverages {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) emit(action models.InventoryAction) {
	if s.onAction != nil {
		s.onAction(action)
	}
}

// persistLocked writes the full inventory snapshot through to durable
// storage. In-memory state is the source of truth; a failed write is
// logged but never propagated to the mutation caller.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	state := State{Beverages: s.beverages, History: s.history}
	if err := s.persister.Save(database.InventoryKey, state); err != nil {
		s.log.WithError(err).Warn("failed to persist inventory snapshot")
	}
}
