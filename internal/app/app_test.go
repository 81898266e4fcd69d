package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rx3lixir/cepic-app/internal/api"
	"github.com/rx3lixir/cepic-app/internal/config"
	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/mailer"
	"github.com/rx3lixir/cepic-app/internal/repository"
	"github.com/rx3lixir/cepic-app/internal/repository/memory"
	"github.com/rx3lixir/cepic-app/internal/store"
	"github.com/rx3lixir/cepic-app/internal/validate"
	"github.com/rx3lixir/cepic-app/pkg/apiclient"
	"github.com/rx3lixir/cepic-app/pkg/health"
	"github.com/rx3lixir/cepic-app/pkg/logger"
	"github.com/rx3lixir/cepic-app/pkg/middleware"
	"github.com/rx3lixir/cepic-app/pkg/nav"
	"github.com/rx3lixir/cepic-app/pkg/password"
	"github.com/rx3lixir/cepic-app/pkg/pricing"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Service: config.ServiceParams{Env: "test", SecretKey: "test-secret-key-0123456789"},
		Server:  config.ServerParams{HTTPPort: "0", RequestTimeout: 10 * time.Second},
		Client:  config.ClientParams{BaseURL: "http://localhost/api", Timeout: 5 * time.Second},
		Auth: config.AuthParams{
			TwoFactor:       true,
			AccessTTL:       15 * time.Minute,
			RefreshTTL:      time.Hour,
			CodeTTL:         10 * time.Minute,
			CodeMaxAttempts: 3,
		},
		Pricing: config.PricingParams{FreeShippingThreshold: 25000, ShippingFee: 2500},
		Storage: config.StorageParams{Driver: "memory"},
		Payment: config.PaymentParams{Simulation: true},
	}
}

type testEnv struct {
	srv    *httptest.Server
	store  *repository.Store
	mail   *mailer.Recorder
	nav    *nav.Memory
	client *apiclient.Client
	api    *api.Services
}

func newTestEnv(t *testing.T, start string, mutate func(*config.AppConfig)) *testEnv {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	repos := memory.New()
	rec := mailer.NewRecorder()
	router, err := NewRouter(cfg, repos, rec, health.New(time.Second), logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	navigator := nav.NewMemory(start)
	client, err := apiclient.NewAuthClient(
		apiclient.Options{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second, Logger: logger.Discard()},
		apiclient.AuthOptions{Navigator: navigator},
	)
	if err != nil {
		t.Fatal(err)
	}

	return &testEnv{srv: srv, store: repos, mail: rec, nav: navigator, client: client, api: api.NewServices(client)}
}

func fillRegisterForm(t *testing.T, flow *store.RegisterFlow, email string) {
	t.Helper()
	fields := map[string]string{
		"firstName":       "Awa",
		"lastName":        "Diallo",
		"email":           email,
		"password":        "ValidPass1!",
		"confirmPassword": "ValidPass1!",
	}
	for k, v := range fields {
		if err := flow.SetField(k, v); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRegisterVerifyEnrollAndPay(t *testing.T) {
	env := newTestEnv(t, nav.RouteRegister, nil)
	ctx := context.Background()

	auth := store.NewAuthStore(env.api.Auth, env.nav, logger.Discard())
	flow := store.NewRegisterFlow(env.api.Auth, auth, env.nav, logger.Discard())

	fillRegisterForm(t, flow, "awa@example.com")
	if err := flow.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if flow.State().Phase != store.PhaseAwaitingCode {
		t.Fatalf("phase = %v, want awaiting code", flow.State().Phase)
	}

	code := env.mail.LastCode("awa@example.com")
	if len(code) != 6 {
		t.Fatalf("no code delivered, got %q", code)
	}
	flow.SetCode(code)
	if err := flow.Verify(ctx); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !auth.State().IsAuthenticated || env.nav.CurrentPath() != nav.RouteHome {
		t.Fatalf("auth = %+v, path = %s", auth.State(), env.nav.CurrentPath())
	}

	enrollments := store.NewEnrollmentStore(env.api.Enrollments, env.api.Payments, env.nav, logger.Discard())
	enrollments.Select(entity.Training{ID: "tr-web", Title: "Développement web", Price: 45000})

	session, err := enrollments.EnrollAndPay(ctx, "tr-web", "New job", entity.InitiatePaymentReq{
		Method:   entity.MethodMobileMoney,
		Operator: "ORANGE",
		Phone:    "07 01 23 45 67",
	})
	if err != nil {
		t.Fatalf("enroll and pay: %v", err)
	}
	if session.Kind != store.PaymentSimulated {
		t.Fatalf("session = %+v", session)
	}
	if env.nav.CurrentPath() != nav.RouteMyEnrollments {
		t.Fatalf("path = %s, want %s", env.nav.CurrentPath(), nav.RouteMyEnrollments)
	}
	if enrollments.State().Selected != nil {
		t.Fatalf("selection must be cleared after payment")
	}

	if err := enrollments.FetchMine(ctx); err != nil {
		t.Fatal(err)
	}
	list := enrollments.State().Enrollments
	if len(list) != 1 {
		t.Fatalf("enrollments = %d", len(list))
	}
	e := list[0]
	if e.PaymentStatus != entity.PaymentPaid || e.Status != entity.EnrollmentActive || e.Amount != 45000 {
		t.Fatalf("enrollment = %+v", e)
	}
	if e.Training == nil || e.Training.ID != "tr-web" {
		t.Fatalf("training not attached: %+v", e.Training)
	}

	res, err := enrollments.VerifyPayment(ctx, session.TransactionID)
	if err != nil || res.Status != entity.PaymentPaid {
		t.Fatalf("verify payment = %+v, %v", res, err)
	}

	// Повторная запись на то же обучение
	if _, err := enrollments.Create(ctx, "tr-web", ""); apiclient.StatusOf(err) != http.StatusConflict {
		t.Fatalf("duplicate enrollment err = %v", err)
	}
}

func TestWrongCodeIsRejected(t *testing.T) {
	env := newTestEnv(t, nav.RouteRegister, nil)
	ctx := context.Background()

	flow := store.NewRegisterFlow(env.api.Auth, nil, env.nav, logger.Discard())
	fillRegisterForm(t, flow, "code@example.com")
	if err := flow.Submit(ctx); err != nil {
		t.Fatal(err)
	}

	wrong := "111111"
	if env.mail.LastCode("code@example.com") == wrong {
		wrong = "222222"
	}
	flow.SetCode(wrong)

	err := flow.Verify(ctx)
	if apiclient.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("verify err = %v, want 400", err)
	}
	st := flow.State()
	if st.Errors["code"] == "" || st.Phase != store.PhaseAwaitingCode {
		t.Fatalf("state = %+v", st)
	}

	// Новый код заменяет старый
	sent := env.mail.Sent()
	if err := flow.Resend(ctx); err != nil {
		t.Fatal(err)
	}
	if env.mail.Sent() != sent+1 {
		t.Fatalf("resend did not deliver a code")
	}
	flow.SetCode(env.mail.LastCode("code@example.com"))
	if err := flow.Verify(ctx); err != nil {
		t.Fatalf("verify with fresh code: %v", err)
	}
}

func TestDuplicateEmailIsFieldError(t *testing.T) {
	env := newTestEnv(t, nav.RouteRegister, func(c *config.AppConfig) { c.Auth.TwoFactor = false })
	ctx := context.Background()

	first := store.NewRegisterFlow(env.api.Auth, nil, env.nav, logger.Discard())
	fillRegisterForm(t, first, "dup@example.com")
	if err := first.Submit(ctx); err != nil {
		t.Fatal(err)
	}

	second := store.NewRegisterFlow(env.api.Auth, nil, env.nav, logger.Discard())
	fillRegisterForm(t, second, "dup@example.com")
	if err := second.Submit(ctx); apiclient.StatusOf(err) != http.StatusConflict {
		t.Fatalf("err = %v, want 409", err)
	}
	if second.State().Errors["email"] != "Email already in use" {
		t.Fatalf("errors = %v", second.State().Errors)
	}
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	env := newTestEnv(t, nav.RouteLogin, func(c *config.AppConfig) { c.Auth.TwoFactor = false })
	ctx := context.Background()

	hash, _ := password.Hash("ValidPass1!")
	if err := env.store.Users.Create(ctx, &entity.User{Email: "koffi@example.com", PasswordHash: hash, Role: entity.RoleUser}); err != nil {
		t.Fatal(err)
	}

	auth := store.NewAuthStore(env.api.Auth, env.nav, logger.Discard())
	if err := auth.Login(ctx, validate.LoginForm{Email: "koffi@example.com", Password: "ValidPass1!"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Access cookie пропал, refresh остался
	env.client.ExpireCookies(apiclient.AccessCookie)

	if err := auth.CheckAuth(ctx); err != nil {
		t.Fatal(err)
	}
	if !auth.State().IsAuthenticated {
		t.Fatalf("session was not restored by refresh")
	}

	if err := auth.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if env.nav.CurrentPath() != nav.RouteLogin {
		t.Fatalf("path = %s", env.nav.CurrentPath())
	}

	// После выхода /auth/me отвечает 401 без редиректа
	before := len(env.nav.History())
	if err := auth.CheckAuth(ctx); err != nil {
		t.Fatal(err)
	}
	if auth.State().IsAuthenticated || len(env.nav.History()) != before {
		t.Fatalf("state = %+v, history = %v", auth.State(), env.nav.History())
	}
}

func TestWrongPasswordDoesNotRedirect(t *testing.T) {
	env := newTestEnv(t, nav.RouteLogin, nil)
	auth := store.NewAuthStore(env.api.Auth, env.nav, logger.Discard())

	err := auth.Login(context.Background(), validate.LoginForm{Email: "nobody@example.com", Password: "whatever1"})
	if apiclient.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
	if env.nav.CurrentPath() != nav.RouteLogin || auth.State().Error == "" {
		t.Fatalf("path = %s, state = %+v", env.nav.CurrentPath(), auth.State())
	}
}

func TestLibraryBrowseAndGuestBookmark(t *testing.T) {
	env := newTestEnv(t, nav.RouteLibrary, nil)
	ctx := context.Background()

	books := store.NewBookStore(env.api.Library, logger.Discard())
	defer books.Close()

	if err := books.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	st := books.State()
	if len(st.Books) != 12 || st.Pagination.TotalCount != 14 || st.Pagination.TotalPages != 2 {
		t.Fatalf("books = %d, pagination = %+v", len(st.Books), st.Pagination)
	}

	if err := books.SetFilter(ctx, "language", "en"); err != nil {
		t.Fatal(err)
	}
	if got := books.State().Pagination.TotalCount; got != 4 {
		t.Fatalf("english books = %d", got)
	}

	cart := store.NewCartStore(pricing.DefaultRules(), logger.Discard(), store.WithCheckoutDelay(0))
	for _, b := range books.State().Books {
		cart.Add(b)
	}
	if q := cart.Quote(); q.Total != q.Subtotal-q.Discount+q.Shipping {
		t.Fatalf("quote = %+v", q)
	}

	// Гость не может ставить закладки: обновление сессии не удается, уходим на логин
	err := books.ToggleBookmark(ctx, "book-01")
	if apiclient.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
	if env.nav.CurrentPath() != nav.RouteLogin {
		t.Fatalf("path = %s, want login", env.nav.CurrentPath())
	}
}

func TestOwnerCancelsEnrollment(t *testing.T) {
	env := newTestEnv(t, nav.RouteHome, func(c *config.AppConfig) { c.Auth.TwoFactor = false })
	ctx := context.Background()

	flow := store.NewRegisterFlow(env.api.Auth, nil, env.nav, logger.Discard())
	fillRegisterForm(t, flow, "cancel@example.com")
	if err := flow.Submit(ctx); err != nil {
		t.Fatal(err)
	}

	enrollments := store.NewEnrollmentStore(env.api.Enrollments, env.api.Payments, env.nav, logger.Discard())
	e, err := enrollments.Create(ctx, "tr-office", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := enrollments.Cancel(ctx, e.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, err := enrollments.Fetch(ctx, e.ID)
	if err != nil || got.Status != entity.EnrollmentCancelled {
		t.Fatalf("enrollment = %+v, %v", got, err)
	}

	if err := enrollments.Cancel(ctx, e.ID); apiclient.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("second cancel err = %v", err)
	}

	// После отмены можно записаться снова
	if _, err := enrollments.Create(ctx, "tr-office", ""); err != nil {
		t.Fatalf("re-enroll: %v", err)
	}
}

func TestRedirectPaymentAndAdminConfirm(t *testing.T) {
	env := newTestEnv(t, nav.RouteHome, func(c *config.AppConfig) {
		c.Auth.TwoFactor = false
		c.Payment = config.PaymentParams{Simulation: false, CheckoutURL: "https://pay.example.com/checkout"}
	})
	ctx := context.Background()

	flow := store.NewRegisterFlow(env.api.Auth, nil, env.nav, logger.Discard())
	fillRegisterForm(t, flow, "card@example.com")
	if err := flow.Submit(ctx); err != nil {
		t.Fatal(err)
	}

	enrollments := store.NewEnrollmentStore(env.api.Enrollments, env.api.Payments, env.nav, logger.Discard())
	session, err := enrollments.EnrollAndPay(ctx, "tr-project", "", entity.InitiatePaymentReq{
		Method: entity.MethodCard,
		Card:   &entity.CardDetails{Number: "4111 1111 1111 1111", Holder: "AWA DIALLO", ExpiryMonth: 12, ExpiryYear: 2030, CVV: "123"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if session.Kind != store.PaymentRedirect || !strings.HasPrefix(session.RedirectURL, "https://pay.example.com/checkout?") {
		t.Fatalf("session = %+v", session)
	}
	if r := env.nav.Redirects(); len(r) != 1 || r[0] != session.RedirectURL {
		t.Fatalf("redirects = %v", r)
	}

	p, err := env.store.Payments.GetByTransaction(ctx, session.TransactionID)
	if err != nil {
		t.Fatal(err)
	}
	if p.CardLast4 != "1111" || p.Status != entity.PaymentPending {
		t.Fatalf("payment = %+v", p)
	}

	// Обычный пользователь не подтверждает платежи
	err = env.client.Send(ctx, http.MethodPost, "/payments/confirm/"+session.TransactionID, nil, nil)
	if apiclient.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("confirm as user err = %v", err)
	}
}

func TestMutationWithoutCSRFTokenIsForbidden(t *testing.T) {
	env := newTestEnv(t, nav.RouteHome, nil)

	resp, err := http.Post(env.srv.URL+"/api/contact", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body middleware.APIError
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusForbidden || body.Error != "Invalid CSRF token" {
		t.Fatalf("status %d body %+v", resp.StatusCode, body)
	}
}

func TestContactAndCatalog(t *testing.T) {
	env := newTestEnv(t, nav.RouteHome, nil)
	ctx := context.Background()

	categories := store.NewCategoryStore(env.api.Catalog)
	if err := categories.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	if err := categories.Select(ctx, "cat-it"); err != nil {
		t.Fatal(err)
	}
	if _, ok := categories.Training("tr-network"); !ok {
		t.Fatalf("trainings of selected category not loaded: %+v", categories.State())
	}

	contact := store.NewContactStore(env.api.Catalog, logger.Discard())
	err := contact.Submit(ctx, validate.ContactForm{
		Name:    "Awa Diallo",
		Email:   "awa@example.com",
		Phone:   "07 01 23 45 67",
		Subject: "Inscription",
		Message: "Quelles sont les dates de la prochaine session ?",
	})
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	if !contact.State().Sent {
		t.Fatalf("contact state = %+v", contact.State())
	}
	if msgs := env.store.Contacts.(*memory.Contacts).Messages(); len(msgs) != 1 || msgs[0].Subject != "Inscription" {
		t.Fatalf("stored messages = %+v", msgs)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, nav.RouteHome, nil)

	resp, err := http.Get(env.srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}

func TestEnrollAndPayReusesUnpaidEnrollment(t *testing.T) {
	env := newTestEnv(t, nav.RouteHome, func(c *config.AppConfig) { c.Auth.TwoFactor = false })
	ctx := context.Background()

	flow := store.NewRegisterFlow(env.api.Auth, nil, env.nav, logger.Discard())
	fillRegisterForm(t, flow, "retry@example.com")
	if err := flow.Submit(ctx); err != nil {
		t.Fatal(err)
	}

	enrollments := store.NewEnrollmentStore(env.api.Enrollments, env.api.Payments, env.nav, logger.Discard())
	first, err := enrollments.Create(ctx, "tr-network", "")
	if err != nil {
		t.Fatal(err)
	}

	// Первая попытка оплаты так и не состоялась, пользователь повторяет весь поток
	pay, err := enrollments.EnrollAndPay(ctx, "tr-network", "", entity.InitiatePaymentReq{
		Method:   entity.MethodMobileMoney,
		Operator: "MTN",
		Phone:    "0501020304",
	})
	if err != nil {
		t.Fatalf("enroll and pay: %v", err)
	}
	if pay.Kind != store.PaymentSimulated {
		t.Fatalf("session = %+v", pay)
	}

	got, err := enrollments.Fetch(ctx, first.ID)
	if err != nil || got.PaymentStatus != entity.PaymentPaid {
		t.Fatalf("first enrollment = %+v, %v", got, err)
	}
	if err := enrollments.FetchMine(ctx); err != nil || len(enrollments.State().Enrollments) != 1 {
		t.Fatalf("duplicate enrollment created: %+v", enrollments.State().Enrollments)
	}
}
