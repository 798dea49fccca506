package conf_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/jeff-dagenais/tklbam/src/conf"
)

func TestParseFrequency(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"4H", 4 * time.Hour},
		{"3D", 3 * 24 * time.Hour},
		{"2W", 14 * 24 * time.Hour},
		{"1M", 30 * 24 * time.Hour},
		{"1m", 30 * 24 * time.Hour},
	}
	for _, c := range cases {
		got, err := conf.ParseFrequency(c.in)
		if err != nil {
			t.Fatalf("ParseFrequency(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseFrequency(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseFrequency_Invalid(t *testing.T) {
	for _, in := range []string{"", "D", "3", "0D", "-1D", "3Y", "xD"} {
		if _, err := conf.ParseFrequency(in); err == nil {
			t.Fatalf("ParseFrequency(%q): expected error", in)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	v := conf.New(t.TempDir()) // no config file present
	c, err := conf.Load(v)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.FullBackup != conf.DefaultFullBackup {
		t.Fatalf("FullBackup = %q, want %q", c.FullBackup, conf.DefaultFullBackup)
	}
	if c.Volsize != conf.DefaultVolsize {
		t.Fatalf("Volsize = %d, want %d", c.Volsize, conf.DefaultVolsize)
	}
	if c.MaxFullAge() != 30*24*time.Hour {
		t.Fatalf("MaxFullAge = %v, want 30 days", c.MaxFullAge())
	}
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := "full-backup: 2W\nvolsize: 100\n"
	if err := os.WriteFile(filepath.Join(dir, "conf.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := conf.Load(conf.New(dir))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.FullBackup != "2W" {
		t.Fatalf("FullBackup = %q, want 2W", c.FullBackup)
	}
	if c.Volsize != 100 {
		t.Fatalf("Volsize = %d, want 100", c.Volsize)
	}
}

func TestLoad_FlagBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "conf.yaml"), []byte("full-backup: 2W\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("full-backup", conf.DefaultFullBackup, "")
	if err := flags.Parse([]string{"--full-backup=3D"}); err != nil {
		t.Fatal(err)
	}
	c, err := conf.Load(conf.New(dir), flags)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if c.FullBackup != "3D" {
		t.Fatalf("FullBackup = %q, want 3D (flag wins)", c.FullBackup)
	}
}

func TestLoad_RejectsBadFrequency(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "conf.yaml"), []byte("full-backup: never\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := conf.Load(conf.New(dir)); err == nil {
		t.Fatalf("expected error for bad full-backup value")
	}
}

func TestLoad_DefaultOverridesPath(t *testing.T) {
	dir := t.TempDir()
	c, err := conf.Load(conf.New(dir))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if want := filepath.Join(dir, "overrides"); c.Overrides != want {
		t.Fatalf("Overrides = %q, want %q", c.Overrides, want)
	}
}
