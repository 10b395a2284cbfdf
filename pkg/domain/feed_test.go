package domain

import (
	"encoding/json"
	"testing"
)

func TestFeedNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Feed
		wantLevel AccessLevel
		wantCount int
	}{
		{"omitted tier defaults to paid", Feed{Name: "f1", IndicatorCount: 3}, AccessPaid, 3},
		{"free kept", Feed{Name: "f1", AccessLevel: AccessFree}, AccessFree, 0},
		{"private kept", Feed{Name: "f1", AccessLevel: AccessPrivate}, AccessPrivate, 0},
		{"unknown kept verbatim", Feed{Name: "f1", AccessLevel: "gold"}, "gold", 0},
		{"negative count clamped", Feed{Name: "f1", IndicatorCount: -4}, AccessPaid, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.AccessLevel != tt.wantLevel {
				t.Errorf("AccessLevel = %q, want %q", got.AccessLevel, tt.wantLevel)
			}
			if got.IndicatorCount != tt.wantCount {
				t.Errorf("IndicatorCount = %d, want %d", got.IndicatorCount, tt.wantCount)
			}
		})
	}
}

func TestFeedNormalizeNeverMorePermissive(t *testing.T) {
	for _, raw := range []AccessLevel{"", AccessFree, AccessPaid, AccessPrivate, "enterprise"} {
		f := Feed{Name: "x", AccessLevel: raw}.Normalize()
		if raw != "" && f.AccessLevel.Restrictiveness() < raw.Restrictiveness() {
			t.Errorf("Normalize(%q) = %q, more permissive than backend value", raw, f.AccessLevel)
		}
	}
}

func TestFeedDecodeWireShape(t *testing.T) {
	var f Feed
	if err := json.Unmarshal([]byte(`{"name":"malware-domains","count":12}`), &f); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if f.IndicatorCount != 12 {
		t.Errorf("IndicatorCount = %d, want 12", f.IndicatorCount)
	}
	if f.AccessLevel != "" {
		t.Errorf("AccessLevel = %q before Normalize, want empty", f.AccessLevel)
	}
}

func TestFeedPath(t *testing.T) {
	f := Feed{Name: "apt 29"}
	if got := f.Path(); got != "/feeds/apt%2029" {
		t.Errorf("Path() = %q", got)
	}
}

func TestValidAccessLevel(t *testing.T) {
	for _, l := range AccessLevels {
		if !ValidAccessLevel(l) {
			t.Errorf("ValidAccessLevel(%q) = false", l)
		}
	}
	if ValidAccessLevel("Paid") {
		t.Error("ValidAccessLevel is case-sensitive")
	}
}
