package security

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWithin(t *testing.T) {
	tmpDir := t.TempDir()
	exports := filepath.Join(tmpDir, "exports")
	private := filepath.Join(tmpDir, "private")
	for _, d := range []string{exports, private} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}
	link := filepath.Join(exports, "reports")
	if err := os.Symlink(private, link); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		dir     string
		wantErr bool
	}{
		{"new file in dir", filepath.Join(exports, "aco-markets.csv"), exports, false},
		{"nested new file", filepath.Join(exports, "2025", "summary.pdf"), exports, false},
		{"dot dot escape", filepath.Join(exports, "..", "aco-markets.csv"), exports, true},
		{"absolute elsewhere", "/etc/passwd", exports, true},
		{"through symlinked dir", filepath.Join(link, "aco-markets.csv"), exports, true},
		{"symlink itself", link, exports, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Within(tt.path, tt.dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Within(%q, %q) error = %v, wantErr %v", tt.path, tt.dir, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrOutsideExportDirs) {
				t.Errorf("expected ErrOutsideExportDirs, got %v", err)
			}
		})
	}
}

func TestValidateExportPath(t *testing.T) {
	extra := t.TempDir()
	t.Chdir(t.TempDir())

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative to working dir", "aco-leakage.csv", false},
		{"temp dir", filepath.Join(os.TempDir(), "summary.pdf"), false},
		{"extra dir", filepath.Join(extra, "summary.pdf"), false},
		{"outside", "/etc/aco.csv", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExportPath(tt.path, extra)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExportPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"county-providers", "county-providers"},
		{"Lakeshore Regional / TJR", "Lakeshore_Regional_TJR"},
		{"../../etc/passwd", "etc_passwd"},
		{"", "unknown"},
		{"***", "unknown"},
		{strings.Repeat("a", 300), strings.Repeat("a", 128)},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
