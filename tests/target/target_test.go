package target_test

import (
	"testing"

	"github.com/jeff-dagenais/tklbam/src/target"
)

func TestParse_Dir_OK(t *testing.T) {
	got, err := target.Parse("dir:/var/backups/tklbam")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Scheme != "dir" {
		t.Fatalf("scheme = %q, want dir", got.Scheme)
	}
	if got.Value != "/var/backups/tklbam" {
		t.Fatalf("value = %q, want /var/backups/tklbam", got.Value)
	}
}

func TestParse_Dir_CleansPath(t *testing.T) {
	got, err := target.Parse("dir:/var//backups/./tklbam")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Value != "/var/backups/tklbam" {
		t.Fatalf("value = %q, want cleaned path", got.Value)
	}
}

func TestParse_S3_OK(t *testing.T) {
	got, err := target.Parse("s3://s3.amazonaws.com/tklbam-bucket")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Scheme != "s3" {
		t.Fatalf("scheme = %q, want s3", got.Scheme)
	}
}

func TestParse_Invalid_Empty(t *testing.T) {
	if _, err := target.Parse(""); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestParse_Invalid_NoScheme(t *testing.T) {
	if _, err := target.Parse("/var/backups"); err == nil {
		t.Fatalf("expected error for missing scheme")
	}
}

func TestParse_Invalid_UnsupportedScheme(t *testing.T) {
	if _, err := target.Parse("ftp:/repo"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestParse_Dir_Relative_Invalid(t *testing.T) {
	if _, err := target.Parse("dir:relative/path"); err == nil {
		t.Fatalf("expected error for relative path")
	}
}

func TestString_Canonical(t *testing.T) {
	got, err := target.Parse("dir:/var//backups")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.String() != "dir:/var/backups" {
		t.Fatalf("String = %q, want dir:/var/backups", got.String())
	}
}
