package device

import (
	"errors"
	"strings"
	"testing"
)

func TestParseImport(t *testing.T) {
	rows, err := ParseImport("bob,pw1\n\n alice , pw2 \n")
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("parsed %d rows, want 2", len(rows))
	}
	if rows[0].Username != "bob" || rows[0].Password != "pw1" {
		t.Errorf("row 0 = %+v, want bob/pw1", rows[0])
	}
	if rows[1].Username != "alice" || rows[1].Password != "pw2" {
		t.Errorf("row 1 = %+v, want trimmed alice/pw2", rows[1])
	}
}

func TestParseImportCRLF(t *testing.T) {
	rows, err := ParseImport("bob,pw1\r\nalice,pw2\r\n")
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("parsed %d rows, want 2", len(rows))
	}
}

func TestParseImportEmptyInput(t *testing.T) {
	rows, err := ParseImport("\n\n  \n")
	if err != nil {
		t.Fatalf("ParseImport: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("parsed %d rows from blank input, want 0", len(rows))
	}
}

func TestParseImportReportsOffendingLine(t *testing.T) {
	_, err := ParseImport("bob,pw1\nalice,\ncarol,pw3\n")
	if err == nil {
		t.Fatal("expected validation error for empty password")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(verr.Lines) != 1 {
		t.Fatalf("got %d line errors, want 1: %v", len(verr.Lines), err)
	}
	if verr.Lines[0].Line != 2 {
		t.Errorf("offending line = %d, want 2", verr.Lines[0].Line)
	}
	if !strings.Contains(verr.Lines[0].Reason, "password") {
		t.Errorf("reason %q does not mention the password", verr.Lines[0].Reason)
	}
}

func TestParseImportCollectsAllErrors(t *testing.T) {
	raw := strings.Join([]string{
		",pw1",                            // line 1: empty username
		"ok,pw2",                          // line 2: fine
		"no-comma-here",                   // line 3: malformed
		strings.Repeat("x", 51) + ",pw4",  // line 4: username too long
		"bob," + strings.Repeat("y", 101), // line 5: password too long
	}, "\n")

	_, err := ParseImport(raw)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}

	wantLines := []int{1, 3, 4, 5}
	if len(verr.Lines) != len(wantLines) {
		t.Fatalf("got %d line errors, want %d: %v", len(verr.Lines), len(wantLines), err)
	}
	for i, want := range wantLines {
		if verr.Lines[i].Line != want {
			t.Errorf("error %d on line %d, want line %d", i, verr.Lines[i].Line, want)
		}
	}
}
