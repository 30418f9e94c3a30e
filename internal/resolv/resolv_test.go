package resolv

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPatch(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		want        string
		wantChanged bool
	}{
		{
			name:        "prepends when missing",
			content:     "nameserver 172.20.0.1\nsearch corp\n",
			want:        "nameserver 10.50.10.50\nnameserver 172.20.0.1\nsearch corp\n",
			wantChanged: true,
		},
		{
			name:        "empty file",
			content:     "",
			want:        "nameserver 10.50.10.50\n",
			wantChanged: true,
		},
		{
			name:        "already present",
			content:     "nameserver 172.20.0.1\nnameserver 10.50.10.50\n",
			want:        "nameserver 172.20.0.1\nnameserver 10.50.10.50\n",
			wantChanged: false,
		},
		{
			name:        "mentioned in a comment",
			content:     "# vpn 10.50.10.50\nnameserver 1.1.1.1\n",
			want:        "# vpn 10.50.10.50\nnameserver 1.1.1.1\n",
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := Patch([]byte(tt.content), "10.50.10.50")
			if string(got) != tt.want {
				t.Errorf("Patch() = %q, want %q", got, tt.want)
			}
			if changed != tt.wantChanged {
				t.Errorf("Patch() changed = %v, want %v", changed, tt.wantChanged)
			}
		})
	}
}

func writeResolv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resolv.conf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApply_WritesAndBacksUp(t *testing.T) {
	path := writeResolv(t, "nameserver 1.1.1.1\n")

	res, err := NewPatcher(nil).Apply(Options{File: path, Nameserver: "10.50.10.50", Backup: true})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !res.Changed {
		t.Error("Apply() should report a change")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "nameserver 10.50.10.50\nnameserver 1.1.1.1\n" {
		t.Errorf("file content = %q", data)
	}

	backup, err := os.ReadFile(res.BackupPath)
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(backup) != "nameserver 1.1.1.1\n" {
		t.Errorf("backup content = %q", backup)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestApply_DryRunLeavesFile(t *testing.T) {
	path := writeResolv(t, "nameserver 1.1.1.1\n")

	res, err := NewPatcher(nil).Apply(Options{File: path, Nameserver: "10.50.10.50", DryRun: true})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !res.Changed {
		t.Error("dry run should still report the pending change")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "nameserver 1.1.1.1\n" {
		t.Errorf("dry run modified the file: %q", data)
	}
}

func TestApply_FollowsSymlink(t *testing.T) {
	target := writeResolv(t, "nameserver 1.1.1.1\n")
	link := filepath.Join(t.TempDir(), "resolv.conf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if _, err := NewPatcher(nil).Apply(Options{File: link, Nameserver: "10.50.10.50"}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("symlink was replaced by a regular file")
	}
	data, _ := os.ReadFile(target)
	if string(data) != "nameserver 10.50.10.50\nnameserver 1.1.1.1\n" {
		t.Errorf("target content = %q", data)
	}
}

func TestApply_Errors(t *testing.T) {
	path := writeResolv(t, "")
	tests := []struct {
		name string
		opts Options
	}{
		{"invalid address", Options{File: path, Nameserver: "not-an-ip"}},
		{"missing file", Options{File: filepath.Join(t.TempDir(), "missing"), Nameserver: "10.50.10.50"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPatcher(nil).Apply(tt.opts); err == nil {
				t.Error("Apply() expected an error")
			}
		})
	}
}
