package migrate

import (
	"strings"
	"testing"
)

func TestStatementsIdempotent(t *testing.T) {
	for i, s := range Statements {
		if !strings.Contains(s, "IF NOT EXISTS") {
			t.Errorf("statement %d is not idempotent: %s", i, s)
		}
	}
}

func TestReferencedTablesCreatedFirst(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Statements {
		f := strings.Fields(s)
		for i, w := range f {
			if w == "REFERENCES" && i+1 < len(f) {
				tbl := f[i+1][:strings.Index(f[i+1], "(")]
				if !seen[tbl] {
					t.Errorf("%s referenced before creation", tbl)
				}
			}
		}
		if strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS ") {
			seen[strings.Fields(s)[5]] = true
		}
	}
}
