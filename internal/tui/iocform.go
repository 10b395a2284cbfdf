package tui

import (
	"strings"

	"github.com/pigeonsec/kestrel-admin/internal/console"
	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

// Field order of the IOC form.
const (
	iocType = iota
	iocValue
	iocHashType
	iocCategory
	iocFeed
	iocAccess
	iocComment
	iocThreatActor
	iocMalware
	iocCampaign
	iocTags
)

func stringsOf[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// newIndicatorForm builds the IOC entry form, prefilling the feed the list
// is filtered to.
func newIndicatorForm(feed string) form {
	return form{
		title: "New IOC",
		fields: []formField{
			iocType:        {label: "Type", value: string(domain.IndicatorDomain), options: stringsOf(domain.IndicatorTypes)},
			iocValue:       {label: "Value", placeholder: "evil.example"},
			iocHashType:    {label: "Hash type", value: domain.HashTypes[0], options: domain.HashTypes},
			iocCategory:    {label: "Category", value: domain.DefaultCategory, options: domain.Categories},
			iocFeed:        {label: "Feed", placeholder: "required", value: feed},
			iocAccess:      {label: "Access", value: string(domain.DefaultAccessLevel), options: stringsOf(domain.AccessLevels)},
			iocComment:     {label: "Comment", placeholder: "optional"},
			iocThreatActor: {label: "Threat actor", placeholder: "optional"},
			iocMalware:     {label: "Malware", placeholder: "optional"},
			iocCampaign:    {label: "Campaign", placeholder: "optional"},
			iocTags:        {label: "Tags", placeholder: "comma separated"},
		},
		focus: iocValue,
		hidden: func(f form, i int) bool {
			return i == iocHashType && f.fields[iocType].value != string(domain.IndicatorHash)
		},
	}
}

func draftFromForm(f form) console.IndicatorDraft {
	d := console.IndicatorDraft{
		Type:        domain.IndicatorType(f.value(iocType)),
		Value:       f.value(iocValue),
		Category:    f.value(iocCategory),
		Feed:        f.value(iocFeed),
		AccessLevel: domain.AccessLevel(f.value(iocAccess)),
		Comment:     f.value(iocComment),
		ThreatActor: f.value(iocThreatActor),
		Malware:     f.value(iocMalware),
		Campaign:    f.value(iocCampaign),
	}
	if d.Type == domain.IndicatorHash {
		d.HashType = f.value(iocHashType)
	}
	for _, tag := range strings.Split(f.value(iocTags), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			d.Tags = append(d.Tags, tag)
		}
	}
	return d
}
