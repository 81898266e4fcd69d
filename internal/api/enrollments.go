package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rx3lixir/cepic-app/internal/entity"
)

// Enrollments эндпоинты записей на обучение
type Enrollments struct {
	c Sender
}

func (e *Enrollments) Create(ctx context.Context, req entity.CreateEnrollmentReq) (*entity.Enrollment, error) {
	var res entity.Enrollment
	if err := e.c.Send(ctx, http.MethodPost, "/enrollments", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (e *Enrollments) Mine(ctx context.Context) ([]entity.Enrollment, error) {
	var res []entity.Enrollment
	if err := e.c.Send(ctx, http.MethodGet, "/enrollments/mine", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Enrollments) Get(ctx context.Context, id string) (*entity.Enrollment, error) {
	var res entity.Enrollment
	if err := e.c.Send(ctx, http.MethodGet, "/enrollments/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (e *Enrollments) Update(ctx context.Context, id string, req entity.UpdateEnrollmentReq) (*entity.Enrollment, error) {
	var res entity.Enrollment
	if err := e.c.Send(ctx, http.MethodPatch, "/enrollments/"+url.PathEscape(id), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Payments эндпоинты оплаты
type Payments struct {
	c Sender
}

func (p *Payments) Initiate(ctx context.Context, req entity.InitiatePaymentReq) (*entity.InitiatePaymentRes, error) {
	var res entity.InitiatePaymentRes
	if err := p.c.Send(ctx, http.MethodPost, "/payments/initiate", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (p *Payments) Verify(ctx context.Context, transactionID string) (*entity.VerifyPaymentRes, error) {
	var res entity.VerifyPaymentRes
	if err := p.c.Send(ctx, http.MethodGet, "/payments/verify/"+url.PathEscape(transactionID), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
