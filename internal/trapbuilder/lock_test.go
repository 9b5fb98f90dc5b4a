package trapbuilder

import "testing"

func TestAcquireBuildLockRejectsSecondHolder(t *testing.T) {
	dir := t.TempDir()

	first, err := acquireBuildLock(dir)
	if err != nil {
		t.Fatalf("first acquireBuildLock failed: %v", err)
	}
	defer first.release()

	if _, err := acquireBuildLock(dir); err == nil {
		t.Error("expected a second lock attempt on the same directory to fail")
	}
}

func TestAcquireBuildLockReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()

	first, err := acquireBuildLock(dir)
	if err != nil {
		t.Fatalf("first acquireBuildLock failed: %v", err)
	}
	if err := first.release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	second, err := acquireBuildLock(dir)
	if err != nil {
		t.Fatalf("expected reacquire after release to succeed, got: %v", err)
	}
	defer second.release()
}
