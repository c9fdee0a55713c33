package version

import (
	"strings"
	"testing"
)

func TestGettersMatchInfo(t *testing.T) {
	v, c, d := Info()
	if GetVersion() != v || GetCommit() != c || GetDate() != d {
		t.Fatalf("getters disagree with Info: %s %s %s", GetVersion(), GetCommit(), GetDate())
	}
	if v == "" || c == "" || d == "" {
		t.Fatal("build info must have defaults")
	}
}

func TestString(t *testing.T) {
	s := String()
	for _, part := range []string{"version=" + GetVersion(), "commit=" + GetCommit(), "date=" + GetDate()} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}
}
