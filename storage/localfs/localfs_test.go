package localfs

import (
	"os"
	"testing"

	"github.com/spf13/pflag"

	"xdao.co/reservecid/storage"
	"xdao.co/reservecid/storage/casregistry"
	"xdao.co/reservecid/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		t.Helper()
		cas, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return cas
	})
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	cas, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	orig := []byte("original")
	id, err := cas.Put(orig)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Corrupt the stored block out-of-band.
	path := cas.pathFor(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := cas.Get(id); err != storage.ErrCIDMismatch {
		t.Fatalf("Get mismatch: got %v want %v", err, storage.ErrCIDMismatch)
	}
	// Put must not repair or overwrite the corrupted block.
	if _, err := cas.Put(orig); err != storage.ErrImmutable {
		t.Fatalf("Put after corruption: got %v want %v", err, storage.ErrImmutable)
	}
}

func TestLocalFS_Registered(t *testing.T) {
	dir := t.TempDir()
	cas, closeFn, err := casregistry.OpenWithConfig("localfs", casregistry.UsageCLI, map[string]string{"localfs-dir": dir})
	if err != nil {
		t.Fatalf("OpenWithConfig: %v", err)
	}
	if closeFn != nil {
		t.Fatalf("localfs should not return a close function")
	}
	if _, err := cas.Put([]byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, _, err := casregistry.OpenWithConfig("localfs", casregistry.UsageDaemon, nil); err == nil {
		t.Fatalf("expected missing localfs-dir error")
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)
	if err := fs.Parse([]string{"--localfs-dir", dir}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := casregistry.Open("localfs", casregistry.UsageCLI); err != nil {
		t.Fatalf("Open: %v", err)
	}
}
