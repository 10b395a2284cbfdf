package domain

import (
	"strings"
	"testing"
	"time"
)

func TestValidIndicatorType(t *testing.T) {
	tests := []struct {
		in    IndicatorType
		valid bool
	}{
		{"domain", true},
		{"ip", true},
		{"url", true},
		{"hash", true},
		{"email", true},
		{"", false},
		{"ipv4", false},
		{"Domain", false},
	}
	for _, tt := range tests {
		if got := ValidIndicatorType(tt.in); got != tt.valid {
			t.Errorf("ValidIndicatorType(%q) = %v, want %v", tt.in, got, tt.valid)
		}
	}
}

func TestIndicatorDeletable(t *testing.T) {
	if (Indicator{Value: "1.2.3.0", Type: IndicatorIP}).Deletable() {
		t.Error("indicator without feed must not be deletable")
	}
	if !(Indicator{Value: "evil.test", Type: IndicatorDomain, Feed: "f1"}).Deletable() {
		t.Error("indicator with feed must be deletable")
	}
}

func TestAPIKeyMaskedSecret(t *testing.T) {
	k := APIKey{Secret: "ksk_" + strings.Repeat("a", 40), CreatedAt: time.Now()}
	got := k.MaskedSecret()
	if got != "ksk_aaaaaaaaaaaaaaaa..." {
		t.Errorf("MaskedSecret() = %q", got)
	}
	if strings.Contains(got, k.Secret) {
		t.Error("masked secret must not contain the full secret")
	}
}

func TestUserCanAdministerFeeds(t *testing.T) {
	var nilUser *User
	if nilUser.CanAdministerFeeds() {
		t.Error("nil user must not administer feeds")
	}
	if (&User{Username: "ops"}).CanAdministerFeeds() {
		t.Error("non-admin must not administer feeds")
	}
	if !(&User{Username: "ops", IsAdmin: true}).CanAdministerFeeds() {
		t.Error("admin must administer feeds")
	}
}
