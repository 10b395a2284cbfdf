package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeInto(f form, s string) form {
	for _, r := range s {
		f, _ = f.update(runes(string(r)))
	}
	return f
}

func TestFormHidesHashTypeUnlessHash(t *testing.T) {
	f := newIndicatorForm("")
	if f.visible(iocHashType) {
		t.Fatal("hash type should be hidden for domain indicators")
	}
	f.focus = iocValue
	f, _ = f.update(tea.KeyMsg{Type: tea.KeyTab})
	if f.focus != iocCategory {
		t.Errorf("tab from value should skip hidden hash type, focus = %d", f.focus)
	}

	f.fields[iocType].value = string(domain.IndicatorHash)
	if !f.visible(iocHashType) {
		t.Error("hash type should be visible for hash indicators")
	}
}

func TestFormChoiceCycles(t *testing.T) {
	f := newIndicatorForm("")
	f.focus = iocType
	f, _ = f.update(runes("l"))
	if f.fields[iocType].value != string(domain.IndicatorIP) {
		t.Errorf("l should advance type, got %q", f.fields[iocType].value)
	}
	f, _ = f.update(runes("h"))
	f, _ = f.update(runes("h"))
	if f.fields[iocType].value != string(domain.IndicatorEmail) {
		t.Errorf("h should wrap backwards, got %q", f.fields[iocType].value)
	}
}

func TestFormSubmitAndCancel(t *testing.T) {
	f := newKeyForm()
	f = typeInto(f, "siem")
	if got := f.value(keyName); got != "siem" {
		t.Errorf("name = %q, want siem", got)
	}
	if _, res := f.update(tea.KeyMsg{Type: tea.KeyCtrlS}); res != formSubmit {
		t.Error("ctrl+s should submit")
	}
	if _, res := f.update(tea.KeyMsg{Type: tea.KeyEsc}); res != formCancel {
		t.Error("esc should cancel")
	}
	f, res := f.update(tea.KeyMsg{Type: tea.KeyEnter})
	if res != formEditing || f.focus != keyRole {
		t.Errorf("enter on first field should advance, res=%v focus=%d", res, f.focus)
	}
	if _, res := f.update(tea.KeyMsg{Type: tea.KeyEnter}); res != formSubmit {
		t.Error("enter on last field should submit")
	}
}

func TestFormIgnoresKeysWhileSubmitting(t *testing.T) {
	f := newKeyForm()
	f.submitting = true
	f = typeInto(f, "abc")
	if f.value(keyName) != "" {
		t.Errorf("input accepted while submitting: %q", f.value(keyName))
	}
}

func TestDraftFromForm(t *testing.T) {
	f := newIndicatorForm("feodo")
	f.fields[iocType].value = string(domain.IndicatorHash)
	f.fields[iocValue].value = "  44d88612fea8a8f36de82e1278abb02f "
	f.fields[iocHashType].value = "md5"
	f.fields[iocTags].value = "emotet, , loader"

	d := draftFromForm(f)
	if d.Value != "44d88612fea8a8f36de82e1278abb02f" {
		t.Errorf("Value = %q", d.Value)
	}
	if d.Feed != "feodo" || d.HashType != "md5" {
		t.Errorf("Feed = %q HashType = %q", d.Feed, d.HashType)
	}
	if len(d.Tags) != 2 || d.Tags[0] != "emotet" || d.Tags[1] != "loader" {
		t.Errorf("Tags = %v", d.Tags)
	}

	f.fields[iocType].value = string(domain.IndicatorDomain)
	if d := draftFromForm(f); d.HashType != "" {
		t.Errorf("hash type leaked into a domain draft: %q", d.HashType)
	}
}
