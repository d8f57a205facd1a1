package catalog

import (
	"strings"
	"testing"

	"github.com/joacominatel/stockq/internal/database/postgres"
	"github.com/joacominatel/stockq/internal/database/sqlserver"
)

func TestTemplateIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range IDs() {
		if seen[id] {
			t.Fatalf("duplicate template id %q", id)
		}
		seen[id] = true
	}
	if len(seen) != 10 {
		t.Fatalf("expected 10 templates, got %d", len(seen))
	}
}

func TestPlaceholdersMatchBindings(t *testing.T) {
	for _, tpl := range All() {
		for i, st := range tpl.Steps {
			if got := placeholders(st.SQL); got != len(st.Bind) {
				t.Errorf("%s step %d: %d placeholders, %d bindings", tpl.ID, i, got, len(st.Bind))
			}
			for _, idx := range st.Bind {
				if idx < 0 || idx >= len(tpl.Params) {
					t.Errorf("%s step %d: binding %d out of range", tpl.ID, i, idx)
				}
			}
		}
		if len(tpl.Params) > 3 {
			t.Errorf("%s: too many parameters", tpl.ID)
		}
	}
}

func TestDeleteSupplierOrder(t *testing.T) {
	tpl, ok := Lookup("delete-supplier")
	if !ok {
		t.Fatalf("delete-supplier missing")
	}

	stmts, err := tpl.Statements(sqlserver.Dialect{}, []any{int64(7)})
	if err != nil {
		t.Fatalf("statements: %v", err)
	}

	wantTables := []string{"Материалы", "ПокупателиСклады", "Склады", "Предприятие", "Поставщики"}
	if len(stmts) != len(wantTables) {
		t.Fatalf("expected %d statements, got %d", len(wantTables), len(stmts))
	}
	for i, table := range wantTables {
		if !strings.HasPrefix(stmts[i].SQL, "DELETE FROM "+table+" ") {
			t.Errorf("statement %d = %q, want delete from %s", i, Compact(stmts[i].SQL), table)
		}
		if len(stmts[i].Args) != 1 || stmts[i].Args[0] != int64(7) {
			t.Errorf("statement %d args = %v", i, stmts[i].Args)
		}
	}
}

func TestRaisePriceBindsOutOfOrder(t *testing.T) {
	tpl, _ := Lookup("raise-price")
	stmts, err := tpl.Statements(sqlserver.Dialect{}, []any{"Brick", 10.0, "Moscow"})
	if err != nil {
		t.Fatalf("statements: %v", err)
	}
	args := stmts[0].Args
	if args[0] != 10.0 || args[1] != "Brick" || args[2] != "Moscow" {
		t.Fatalf("unexpected bind order %v", args)
	}
}

func TestProcedureStatementPerDialect(t *testing.T) {
	tpl, _ := Lookup("material-prices")
	args := []any{"Brick", 99.5}

	ms, err := tpl.Statements(sqlserver.Dialect{}, args)
	if err != nil {
		t.Fatalf("statements: %v", err)
	}
	if ms[0].SQL != "EXEC dbo.ЦеныМатериалов @название_материала = ?, @цена_материала = ?" {
		t.Fatalf("unexpected sqlserver call %q", ms[0].SQL)
	}

	pg, err := tpl.Statements(postgres.Dialect{}, args)
	if err != nil {
		t.Fatalf("statements: %v", err)
	}
	if !strings.HasPrefix(pg[0].SQL, `SELECT * FROM "dbo"."ЦеныМатериалов"(`) {
		t.Fatalf("unexpected postgres call %q", pg[0].SQL)
	}
	if len(pg[0].Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(pg[0].Args))
	}
}

func TestStatementsArgCount(t *testing.T) {
	tpl, _ := Lookup("material-by-price")
	if _, err := tpl.Statements(sqlserver.Dialect{}, []any{"x"}); err == nil {
		t.Fatalf("expected argument count error")
	}
}

func TestParamParse(t *testing.T) {
	tests := []struct {
		name    string
		param   Param
		input   string
		want    any
		wantErr bool
	}{
		{name: "text kept verbatim", param: Param{Kind: KindText}, input: " Brick ", want: " Brick "},
		{name: "int", param: Param{Kind: KindInt}, input: " 42 ", want: int64(42)},
		{name: "int rejects float", param: Param{Kind: KindInt}, input: "4.2", wantErr: true},
		{name: "float", param: Param{Kind: KindFloat}, input: "12.5", want: 12.5},
		{name: "float with comma", param: Param{Kind: KindFloat}, input: "12,5", want: 12.5},
		{name: "float rejects text", param: Param{Kind: KindFloat}, input: "cheap", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.param.Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %v (%T), want %v (%T)", tt.input, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestParamBlank(t *testing.T) {
	p := Param{Kind: KindText, NonBlank: true}
	if !p.Blank("   ") {
		t.Fatalf("whitespace should be blank")
	}
	if p.Blank("Brick") {
		t.Fatalf("value should not be blank")
	}
	if (Param{Kind: KindText}).Blank("") {
		t.Fatalf("optional param never blank")
	}
}
