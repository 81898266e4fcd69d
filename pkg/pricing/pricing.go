// Package pricing считает стоимость корзины: сумма, скидка по промокоду,
// доставка и итог. Все суммы в целых единицах валюты (FCFA).
package pricing

import (
	"math"
	"strings"
)

const (
	DefaultFreeShippingThreshold int64 = 25000
	DefaultShippingFee           int64 = 2500
)

// Item позиция корзины
type Item struct {
	ID    string
	Price int64
	Free  bool
}

// Promo примененный промокод
type Promo struct {
	Code    string `json:"code" mapstructure:"code"`
	Percent int    `json:"percent" mapstructure:"percent"`
}

// Rules параметры расчета
type Rules struct {
	FreeShippingThreshold int64
	ShippingFee           int64
	Promos                map[string]int
}

// Quote результат расчета
type Quote struct {
	Subtotal int64  `json:"subtotal"`
	Discount int64  `json:"discount"`
	Shipping int64  `json:"shipping"`
	Total    int64  `json:"total"`
	Promo    *Promo `json:"promo,omitempty"`
}

// DefaultRules возвращает правила по умолчанию
func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		ShippingFee:           DefaultShippingFee,
		Promos: map[string]int{
			"BOOK10":    10,
			"WELCOME15": 15,
			"STUDENT20": 20,
		},
	}
}

// Subtotal сумма цен позиций; бесплатная позиция стоит 0 независимо от цены
func Subtotal(items []Item) int64 {
	var sum int64
	for _, it := range items {
		if it.Free || it.Price < 0 {
			continue
		}
		sum += it.Price
	}
	return sum
}

// LookupPromo ищет промокод без учета регистра
func (r Rules) LookupPromo(code string) (Promo, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return Promo{}, false
	}
	pct, ok := r.Promos[normalized]
	if !ok || pct <= 0 || pct > 100 {
		return Promo{}, false
	}
	return Promo{Code: normalized, Percent: pct}, true
}

// Discount скидка как округленный процент от суммы
func Discount(subtotal int64, promo *Promo) int64 {
	if promo == nil || subtotal <= 0 {
		return 0
	}
	d := int64(math.Round(float64(subtotal) * float64(promo.Percent) / 100))
	if d > subtotal {
		return subtotal
	}
	return d
}

// Shipping бесплатна от порога, ниже него фиксированный сбор
func (r Rules) Shipping(subtotal int64) int64 {
	if subtotal >= r.FreeShippingThreshold {
		return 0
	}
	return r.ShippingFee
}

// Quote считает итог: subtotal - discount + shipping
func (r Rules) Quote(items []Item, promo *Promo) Quote {
	subtotal := Subtotal(items)
	discount := Discount(subtotal, promo)
	shipping := r.Shipping(subtotal)

	q := Quote{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    subtotal - discount + shipping,
	}
	if promo != nil {
		p := *promo
		q.Promo = &p
	}
	return q
}
