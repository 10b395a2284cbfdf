package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/pigeonsec/kestrel-admin/pkg/domain"
)

const opImport = "import indicators"

// ImportFile is a bulk indicator document. Top-level fields are defaults for
// entries that leave them out.
//
//	feed: phishing-2024
//	category: Phishing
//	access_level: paid
//	iocs:
//	  - type: domain
//	    value: login-micros0ft.test
//	    context: credential harvesting kit
type ImportFile struct {
	Feed        string        `yaml:"feed"`
	Category    string        `yaml:"category"`
	AccessLevel string        `yaml:"access_level"`
	IOCs        []ImportEntry `yaml:"iocs"`
}

// ImportEntry is one indicator in an ImportFile. Context becomes the comment.
type ImportEntry struct {
	Type     string `yaml:"type"`
	Value    string `yaml:"value"`
	Context  string `yaml:"context"`
	Feed     string `yaml:"feed,omitempty"`
	Category string `yaml:"category,omitempty"`
}

// ImportResult is the outcome of one entry.
type ImportResult struct {
	Index int
	Value string
	Err   error
}

// ImportReport summarises an import.
type ImportReport struct {
	Total   int
	Created int
	Failed  []ImportResult
}

// ParseImportFile decodes a bulk document, rejecting unknown fields.
func ParseImportFile(r io.Reader) (*ImportFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f ImportFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("console.ParseImportFile: %w", err)
	}
	return &f, nil
}

func (f *ImportFile) draft(e ImportEntry) IndicatorDraft {
	d := IndicatorDraft{
		Type:        domain.IndicatorType(e.Type),
		Value:       e.Value,
		Comment:     e.Context,
		Feed:        f.Feed,
		Category:    f.Category,
		AccessLevel: domain.AccessLevel(f.AccessLevel),
	}
	if e.Feed != "" {
		d.Feed = e.Feed
	}
	if e.Category != "" {
		d.Category = e.Category
	}
	return d
}

// Import submits every entry of the document read from r, one call per
// entry, and re-lists indicators once at the end. Entries that fail are
// recorded in the report; an auth failure stops the import.
func (o *Orchestrator) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	file, err := ParseImportFile(r)
	if err != nil {
		return nil, o.reject(precondition(opImport, err.Error()))
	}
	report := &ImportReport{Total: len(file.IOCs)}

	epoch := o.sess.Epoch()
	if _, ok := o.sess.Credential(); !ok {
		return report, o.signedOut(epoch, opImport)
	}

	for i, e := range file.IOCs {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("console.Import: %w", err)
		}
		req, err := BuildIndicatorRequest(file.draft(e))
		if err != nil {
			report.Failed = append(report.Failed, ImportResult{Index: i, Value: e.Value, Err: err})
			continue
		}
		if err := o.backend.CreateIndicator(ctx, req); err != nil {
			f := classify(opImport, msgIndicatorAdd, err)
			if f.Kind == FailureAuth {
				o.expire(epoch, f)
				o.report(f, SeverityError)
				return report, f
			}
			report.Failed = append(report.Failed, ImportResult{Index: i, Value: e.Value, Err: f})
			continue
		}
		report.Created++
	}

	o.log.Info().Int("total", report.Total).Int("created", report.Created).Int("failed", len(report.Failed)).Msg("import finished")
	sev := SeveritySuccess
	if len(report.Failed) > 0 {
		sev = SeverityError
	}
	o.notifier.Notify(newNotice(sev, fmt.Sprintf("Imported %d of %d IOCs", report.Created, report.Total)))
	if report.Created > 0 {
		o.ListIndicators(ctx) //nolint:errcheck // reported through the notifier
	}
	return report, nil
}
