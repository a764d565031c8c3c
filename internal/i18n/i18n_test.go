package i18n

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/adept-reqfields/internal/requestinfo"
)

func TestT_LocaleFromContext(t *testing.T) {
	c, err := New("en")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	en := c.T(context.Background(), RuleDuplicate)
	if en != "This field is already set as required for the selected model." {
		t.Errorf("en = %q", en)
	}

	ctx := requestinfo.WithInfo(context.Background(), &requestinfo.RequestInfo{Locale: "fr"})
	if fr := c.T(ctx, RuleDuplicate); !strings.HasPrefix(fr, "Ce champ") {
		t.Errorf("fr = %q", fr)
	}

	// Unsupported locale falls back.
	ctx = requestinfo.WithInfo(context.Background(), &requestinfo.RequestInfo{Locale: "xx"})
	if got := c.T(ctx, RuleDuplicate); got != en {
		t.Errorf("fallback = %q", got)
	}
}

func TestT_Params(t *testing.T) {
	c, _ := New("en")
	got := c.T(context.Background(), RequiredMissing, "➡ Email (`email`)")
	want := "The following required fields must be filled:\n➡ Email (`email`)"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestT_UnknownKey(t *testing.T) {
	c, _ := New("en")
	if got := c.T(context.Background(), "nope"); got != "nope" {
		t.Errorf("unknown key = %q", got)
	}
}

func TestNew_BadFallback(t *testing.T) {
	if _, err := New("xx"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRegisterValidator(t *testing.T) {
	c, _ := New("en")
	v := validator.New()
	if err := c.RegisterValidator(v); err != nil {
		t.Fatalf("RegisterValidator: %v", err)
	}
	type in struct {
		ModelID int64 `validate:"required"`
	}
	err := v.Struct(in{})
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) != 1 {
		t.Fatalf("unexpected validation result: %v", err)
	}
	if msg := verrs[0].Translate(c.Translator("en")); msg != "ModelID is a required field" {
		t.Errorf("translated = %q", msg)
	}
}
