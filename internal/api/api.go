// Package api типизированные обертки над эндпоинтами REST API.
// Все вызовы идут через apiclient.Client с его CSRF и auth перехватчиками.
package api

import (
	"context"

	"github.com/rx3lixir/cepic-app/pkg/apiclient"
)

// Sender то, что нужно оберткам от клиента
type Sender interface {
	Send(ctx context.Context, method, path string, in, out any) error
}

var _ Sender = (*apiclient.Client)(nil)

// Services набор оберток поверх одного клиента
type Services struct {
	Auth        *Auth
	Library     *Library
	Enrollments *Enrollments
	Payments    *Payments
	Catalog     *Catalog
}

func NewServices(c Sender) *Services {
	return &Services{
		Auth:        &Auth{c: c},
		Library:     &Library{c: c},
		Enrollments: &Enrollments{c: c},
		Payments:    &Payments{c: c},
		Catalog:     &Catalog{c: c},
	}
}
