package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/yanizio/adept-reqfields/internal/rule"
	"github.com/yanizio/adept-reqfields/internal/schema"
)

type fields []schema.Field

func (f fields) FieldsByIDs(context.Context, []int64) ([]schema.Field, error) { return f, nil }

func TestPrintRules(t *testing.T) {
	var buf bytes.Buffer
	err := printRules(context.Background(), &buf,
		[]rule.Rule{{ID: 1, ModelName: "res.partner", IsRequired: true, FieldIDs: []int64{10, 11}}},
		fields{{ID: 10, Name: "email"}, {ID: 11, Name: "phone"}})
	if err != nil {
		t.Fatalf("printRules: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "res.partner") || !strings.Contains(out, "email, phone") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
