// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"shade-cli/internal/testutil"
)

func TestInspect(t *testing.T) {
	t.Parallel()

	jar := testutil.WriteArchive(t, filepath.Join(t.TempDir(), "app.jar"),
		testutil.Dir("com/acme/"),
		testutil.File("com/acme/Main.class", string(testutil.NewClass("com/acme/Main").Bytes())),
		testutil.File("com/acme/Impl.class", string(testutil.NewClass("com/acme/Impl").Super("com/acme/Base").Bytes())),
		testutil.File("org/other/Util.class", string(testutil.NewClass("org/other/Util").Bytes())),
		testutil.File("com/acme/Broken.class", "\xca\xfe"),
		testutil.File("app.properties", "k=v"),
	)

	t.Run("all classes", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, Dependencies{Config: defaults()}, "inspect", jar)
		if err != nil {
			t.Fatalf("inspect failed: %v", err)
		}
		for _, want := range []string{"com.acme.Main", "com.acme.Impl", "extends com.acme.Base", "org.other.Util", "✗ com/acme/Broken.class", "3 class(es), 1 resource(s)", "1 unreadable class(es)"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("inspect output should contain %q, got:\n%s", want, stdout)
			}
		}
		if strings.Contains(stdout, "extends java.lang.Object") {
			t.Error("java.lang.Object super classes should be omitted")
		}
	})

	t.Run("package filter", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, Dependencies{Config: defaults()}, "inspect", "--package", "org.other", jar)
		if err != nil {
			t.Fatalf("inspect failed: %v", err)
		}
		if !strings.Contains(stdout, "org.other.Util") || strings.Contains(stdout, "com.acme.Main") {
			t.Errorf("inspect --package output = %q", stdout)
		}
		if !strings.Contains(stdout, "1 class(es)") {
			t.Errorf("inspect --package should count one class, got %q", stdout)
		}
	})

	t.Run("not an archive", func(t *testing.T) {
		t.Parallel()

		path := testutil.MustWriteFile(t, filepath.Join(t.TempDir(), "x.jar"), "plain text")
		_, stderr, err := run(t, Dependencies{Config: defaults()}, "inspect", path)
		if err == nil {
			t.Fatal("inspect should fail on a non-archive")
		}
		if !strings.Contains(stderr, "not a valid archive") {
			t.Errorf("stderr = %q", stderr)
		}
	})
}
