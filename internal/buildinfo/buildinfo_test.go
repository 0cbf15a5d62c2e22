package buildinfo

import "testing"

func TestRelease(t *testing.T) {
	origVersion, origCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = origVersion, origCommit })

	Version, Commit = "", ""
	if got := Release(); got != "zoky-messenger@dev" {
		t.Errorf("Release() = %q, want dev release", got)
	}

	Commit = "abc123"
	if got := Release(); got != "zoky-messenger@abc123" {
		t.Errorf("Release() = %q, want commit release", got)
	}

	Version = "v1.2.0"
	if got := Release(); got != "zoky-messenger@v1.2.0" {
		t.Errorf("Release() = %q, want version release", got)
	}
}
