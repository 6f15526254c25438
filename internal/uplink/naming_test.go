package uplink

import "testing"

func TestProjectName(t *testing.T) {
	if got := ProjectName(42); got != "capsule-42" {
		t.Errorf("ProjectName(42) = %q", got)
	}
}

func TestBelongsToCapsule(t *testing.T) {
	cases := []struct {
		name      string
		capsuleID int64
		want      bool
	}{
		{"capsule-42-web-1", 42, true},
		{"/capsule-42-web-1", 42, true}, // runtime reports a leading slash
		{"capsule-42_web_1", 42, true},  // older compose separator
		{"capsule-42-db-2", 42, true},
		{"capsule-421-web-1", 42, false}, // id must match exactly, not by prefix
		{"capsule-4-web-1", 42, false},
		{"capsule-42", 42, false}, // bare project name is not a container
		{"unrelated", 42, false},
	}
	for _, tc := range cases {
		if got := BelongsToCapsule(tc.name, tc.capsuleID); got != tc.want {
			t.Errorf("BelongsToCapsule(%q, %d) = %v, want %v", tc.name, tc.capsuleID, got, tc.want)
		}
	}
}
