// Package payment платежные сессии: симуляция или переход на страницу шлюза.
package payment

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rx3lixir/cepic-app/internal/entity"
)

// Checkout результат открытия платежной сессии
type Checkout struct {
	TransactionID string
	RedirectURL   string
	// Settled платеж проведен сразу, подтверждение шлюза не нужно
	Settled bool
}

type Gateway interface {
	Start(ctx context.Context, p *entity.Payment) (Checkout, error)
}

// NewGateway симуляция, если simulation, иначе внешний шлюз по checkoutURL
func NewGateway(simulation bool, checkoutURL string) (Gateway, error) {
	if simulation {
		return Simulator{}, nil
	}
	u, err := url.Parse(checkoutURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid checkout url %q", checkoutURL)
	}
	return &Redirect{base: u}, nil
}

// NewTransactionID идентификатор транзакции
func NewTransactionID() string {
	return "TX-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:16]
}

// Simulator проводит платеж сразу
type Simulator struct{}

func (Simulator) Start(_ context.Context, p *entity.Payment) (Checkout, error) {
	return Checkout{TransactionID: p.TransactionID, Settled: true}, nil
}

// Redirect отправляет пользователя на страницу оплаты шлюза
type Redirect struct {
	base *url.URL
}

func (g *Redirect) Start(_ context.Context, p *entity.Payment) (Checkout, error) {
	u := *g.base
	q := u.Query()
	q.Set("transactionId", p.TransactionID)
	q.Set("amount", fmt.Sprint(p.Amount))
	q.Set("method", string(p.Method))
	u.RawQuery = q.Encode()

	return Checkout{TransactionID: p.TransactionID, RedirectURL: u.String()}, nil
}

// CardLast4 последние 4 цифры номера карты, остальное не хранится
func CardLast4(number string) string {
	digits := make([]byte, 0, len(number))
	for i := 0; i < len(number); i++ {
		if number[i] >= '0' && number[i] <= '9' {
			digits = append(digits, number[i])
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}
