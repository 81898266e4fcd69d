package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/pkg/pricing"
)

const DefaultCheckoutDelay = 1500 * time.Millisecond

type CartState struct {
	Items       []entity.Book
	Promo       *pricing.Promo
	PromoError  string
	IsOpen      bool
	CheckingOut bool
	Quote       pricing.Quote
}

// CartStore выбранные книги. Элементы уникальны по id, порядок добавления сохраняется.
type CartStore struct {
	mu            sync.Mutex
	rules         pricing.Rules
	log           *slog.Logger
	checkoutDelay time.Duration

	items      []entity.Book
	promo      *pricing.Promo
	promoError string
	open       bool
	checkout   bool
}

type CartOption func(*CartStore)

func WithCheckoutDelay(d time.Duration) CartOption {
	return func(c *CartStore) {
		c.checkoutDelay = d
	}
}

func NewCartStore(rules pricing.Rules, log *slog.Logger, opts ...CartOption) *CartStore {
	c := &CartStore{rules: rules, log: loggerOrDefault(log), checkoutDelay: DefaultCheckoutDelay}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CartStore) State() CartState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := CartState{
		Items:       append([]entity.Book(nil), c.items...),
		PromoError:  c.promoError,
		IsOpen:      c.open,
		CheckingOut: c.checkout,
		Quote:       c.quoteLocked(),
	}
	if c.promo != nil {
		p := *c.promo
		st.Promo = &p
	}
	return st
}

// Add добавляет книгу. Повторное добавление ничего не меняет.
func (c *CartStore) Add(b entity.Book) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexLocked(b.ID) >= 0 {
		return false
	}
	c.items = append(c.items, b)
	return true
}

// Remove удаляет книгу. Отсутствующий id ничего не меняет.
func (c *CartStore) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return true
}

func (c *CartStore) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexLocked(id) >= 0
}

func (c *CartStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear очищает корзину и промокод
func (c *CartStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.promo = nil
	c.promoError = ""
}

// ApplyPromo применяет код вместо предыдущего. Неизвестный код
// оставляет примененный промокод как был.
func (c *CartStore) ApplyPromo(code string) error {
	p, ok := c.rules.LookupPromo(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !ok {
		c.promoError = "Invalid promo code"
		return ErrUnknownPromo
	}
	c.promo = &p
	c.promoError = ""
	return nil
}

func (c *CartStore) RemovePromo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promo = nil
	c.promoError = ""
}

// Quote расчет по текущей корзине
func (c *CartStore) Quote() pricing.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quoteLocked()
}

func (c *CartStore) Open() {
	c.mu.Lock()
	c.open = true
	c.mu.Unlock()
}

func (c *CartStore) Close() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}

func (c *CartStore) Toggle() {
	c.mu.Lock()
	c.open = !c.open
	c.mu.Unlock()
}

// Checkout имитирует оплату: ждет задержку, затем атомарно очищает корзину
// и закрывает панель. Отмена ctx оставляет корзину нетронутой.
func (c *CartStore) Checkout(ctx context.Context) (pricing.Quote, error) {
	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		return pricing.Quote{}, ErrEmptyCart
	}
	if c.checkout {
		c.mu.Unlock()
		return pricing.Quote{}, ErrCheckoutInProgress
	}
	c.checkout = true
	c.mu.Unlock()

	timer := time.NewTimer(c.checkoutDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.mu.Lock()
		c.checkout = false
		c.mu.Unlock()
		return pricing.Quote{}, ctx.Err()
	case <-timer.C:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	receipt := c.quoteLocked()
	count := len(c.items)
	c.items = nil
	c.promo = nil
	c.promoError = ""
	c.open = false
	c.checkout = false

	c.log.InfoContext(ctx, "Checkout completed", "total", receipt.Total, "items", count)
	return receipt, nil
}

func (c *CartStore) quoteLocked() pricing.Quote {
	items := make([]pricing.Item, 0, len(c.items))
	for _, b := range c.items {
		items = append(items, pricing.Item{ID: b.ID, Price: b.Price, Free: b.IsFree})
	}
	return c.rules.Quote(items, c.promo)
}

func (c *CartStore) indexLocked(id string) int {
	for i, b := range c.items {
		if b.ID == id {
			return i
		}
	}
	return -1
}
