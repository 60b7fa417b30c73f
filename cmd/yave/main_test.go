package main

import (
	"os"
	"testing"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestRunHeadlessSelfTests(t *testing.T) {
	chdirTemp(t)
	if code := run([]string{"--headless", "--run-tests"}); code != exitOK {
		t.Fatalf("run = %d, want exitOK", code)
	}
}

func TestRunRejectsTooManyArgs(t *testing.T) {
	chdirTemp(t)
	if code := run([]string{"--headless", "a.yave", "b.yave"}); code != exitBadArgs {
		t.Fatalf("run = %d, want exitBadArgs", code)
	}
}

func TestRunWithoutHeadlessFailsDeviceInitWhenNoDriverRegistered(t *testing.T) {
	chdirTemp(t)
	if code := run(nil); code != exitDeviceInit {
		t.Fatalf("run = %d, want exitDeviceInit (no driver.Driver registered in this binary)", code)
	}
}

func TestRunSceneLoadFailureReportsExitCode(t *testing.T) {
	chdirTemp(t)
	if code := run([]string{"--headless", "does-not-exist.yave"}); code != exitSceneLoad {
		t.Fatalf("run = %d, want exitSceneLoad", code)
	}
}
