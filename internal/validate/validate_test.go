package validate

import (
	"testing"

	"github.com/rx3lixir/cepic-app/internal/entity"
)

func TestRegisterForm(t *testing.T) {
	valid := RegisterForm{
		FirstName:       "Awa",
		LastName:        "Diallo",
		Email:           "awa@example.com",
		Password:        "ValidPass1!",
		ConfirmPassword: "ValidPass1!",
	}
	if errs := Struct(valid); errs != nil {
		t.Fatalf("valid form rejected: %v", errs)
	}

	short := valid
	short.Password, short.ConfirmPassword = "short", "short"
	errs := Struct(short)
	if errs["password"] == "" {
		t.Fatalf("short password accepted: %v", errs)
	}

	mismatch := valid
	mismatch.ConfirmPassword = "ValidPass2!"
	errs = Struct(mismatch)
	if errs["confirmPassword"] != "Passwords do not match" {
		t.Fatalf("confirmPassword error = %q", errs["confirmPassword"])
	}

	blank := valid
	blank.FirstName = "   "
	if Struct(blank)["firstName"] == "" {
		t.Fatalf("blank first name accepted")
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0701234567", true},
		{"07 01 23 45 67", true},
		{"07-01-23-45-67", true},
		{"(07) 01.23.45.67", true},
		{"070123456", false},
		{"07012345678", false},
		{"07012345ab", false},
		{"+2250701234567", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPhone(tt.in); got != tt.want {
			t.Errorf("IsPhone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPaymentMethod(t *testing.T) {
	mm := entity.InitiatePaymentReq{Method: entity.MethodMobileMoney, Operator: "ORANGE", Phone: "07 01 23 45 67"}
	if errs := PaymentMethod(mm); errs != nil {
		t.Fatalf("valid mobile money rejected: %v", errs)
	}

	mm.Phone = "123"
	if PaymentMethod(mm)["phone"] == "" {
		t.Fatalf("short phone accepted")
	}

	card := entity.InitiatePaymentReq{
		Method: entity.MethodCard,
		Card: &entity.CardDetails{
			Number:      "4111 1111 1111 1111",
			Holder:      "AWA DIALLO",
			ExpiryMonth: 12,
			ExpiryYear:  2030,
			CVV:         "123",
		},
	}
	if errs := PaymentMethod(card); errs != nil {
		t.Fatalf("valid card rejected: %v", errs)
	}

	// Луна не проверяется, только длина
	card.Card.Number = "1234567890123"
	if errs := PaymentMethod(card); errs != nil {
		t.Fatalf("13 digit card rejected: %v", errs)
	}

	bad := *card.Card
	bad.Number = "411111111111"
	bad.Holder = ""
	bad.ExpiryMonth = 13
	bad.CVV = "12345"
	errs := PaymentMethod(entity.InitiatePaymentReq{Method: entity.MethodCard, Card: &bad})
	for _, field := range []string{"number", "holder", "expiryMonth", "cvv"} {
		if errs[field] == "" {
			t.Errorf("expected error for %s, got %v", field, errs)
		}
	}

	if PaymentMethod(entity.InitiatePaymentReq{})["method"] == "" {
		t.Fatalf("missing method accepted")
	}
}

func TestMergeServerWins(t *testing.T) {
	got := Merge(
		map[string]string{"email": "Enter a valid email address", "password": "Must be at least 8 characters"},
		map[string]string{"email": "Email already in use"},
	)
	if got["email"] != "Email already in use" {
		t.Fatalf("email = %q, want server message", got["email"])
	}
	if got["password"] == "" {
		t.Fatalf("local error lost")
	}
	if Merge(nil, nil) != nil {
		t.Fatalf("Merge(nil, nil) must be nil")
	}
}

func TestContactForm(t *testing.T) {
	form := ContactForm{Name: "Awa", Email: "awa@example.com", Subject: "Info", Message: "Hello there, more info please"}
	if errs := Struct(form); errs != nil {
		t.Fatalf("valid contact rejected: %v", errs)
	}
	form.Message = "short"
	form.Phone = "12"
	errs := Struct(form)
	if errs["message"] == "" || errs["phone"] == "" {
		t.Fatalf("expected message and phone errors, got %v", errs)
	}
}
