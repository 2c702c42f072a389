package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetUsesLinkerValues(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = oldV, oldC, oldD })

	Version, Commit, BuildDate = "v1.2.3", "abc1234", "2025-08-11T18:42:00Z"
	info := Get()
	if info.Version != "v1.2.3" || info.Commit != "abc1234" || info.BuildDate != "2025-08-11T18:42:00Z" {
		t.Errorf("Get() = %+v", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if s := info.String(); !strings.HasPrefix(s, "v1.2.3 (commit=abc1234") {
		t.Errorf("String() = %q", s)
	}
}

func TestGetNeverReturnsEmptyFields(t *testing.T) {
	oldC, oldD := Commit, BuildDate
	t.Cleanup(func() { Commit, BuildDate = oldC, oldD })

	Commit, BuildDate = "", ""
	info := Get()
	if info.Commit == "" || info.BuildDate == "" {
		t.Errorf("Get() = %+v, want placeholders", info)
	}
}

func TestShortRevision(t *testing.T) {
	if got := shortRevision("0123456789abcdef"); got != "0123456" {
		t.Errorf("shortRevision = %q", got)
	}
	if got := shortRevision("abc"); got != "abc" {
		t.Errorf("shortRevision = %q", got)
	}
}
