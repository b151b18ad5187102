package sqlutil

import "testing"

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		dialect Dialect
		input   string
		want    string
	}{
		{DialectPostgres, "vendas", `"vendas"`},
		{DialectPostgres, `we"ird`, `"we""ird"`},
		{DialectMySQL, "vendas", "`vendas`"},
		{DialectMySQL, "we`ird", "`we``ird`"},
	}

	for _, tt := range tests {
		if got := tt.dialect.QuoteIdentifier(tt.input); got != tt.want {
			t.Errorf("%s.QuoteIdentifier(%q) = %q, want %q", tt.dialect, tt.input, got, tt.want)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	if got := DialectPostgres.Placeholder(1); got != "$1" {
		t.Errorf("postgres placeholder = %q, want $1", got)
	}
	if got := DialectPostgres.Placeholder(12); got != "$12" {
		t.Errorf("postgres placeholder = %q, want $12", got)
	}
	if got := DialectMySQL.Placeholder(5); got != "?" {
		t.Errorf("mysql placeholder = %q, want ?", got)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"vendas", "preco_competidores", "Table123", "_x"}
	for _, name := range valid {
		if !IsValidIdentifier(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}

	invalid := []string{"", "drop table", "users;--", "ação", `a"b`, "a`b"}
	for _, name := range invalid {
		if IsValidIdentifier(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

func TestQuoteIdentifierSafe(t *testing.T) {
	if _, err := DialectPostgres.QuoteIdentifierSafe("vendas"); err != nil {
		t.Errorf("unexpected error for valid identifier: %v", err)
	}

	_, err := DialectPostgres.QuoteIdentifierSafe("drop table")
	if err == nil {
		t.Fatal("expected error for invalid identifier")
	}
	if _, ok := err.(*InvalidIdentifierError); !ok {
		t.Errorf("expected *InvalidIdentifierError, got %T", err)
	}
}

func TestDialectValid(t *testing.T) {
	if !DialectPostgres.Valid() || !DialectMySQL.Valid() {
		t.Error("expected built-in dialects to be valid")
	}
	if Dialect("oracle").Valid() {
		t.Error("expected unknown dialect to be invalid")
	}
}
