// Command validate performs integrity checks over the mock data fixtures
// written by genmock: normalized sentiment records and generated alerts.
// It verifies ID determinism, value ranges, bias-correction arithmetic,
// and that every alert is consistent with the records behind it.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -records-json data/mock/sentiment_records.json \
//	  -alerts-json data/mock/sentiment_alerts.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/metrowatch/sentiment-etl/internal/config"
	"github.com/metrowatch/sentiment-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	recordsJSON := flag.String("records-json", "", "path to normalized record fixture")
	alertsJSON := flag.String("alerts-json", "", "path to generated alert fixture")
	flag.Parse()

	if *recordsJSON == "" || *alertsJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*recordsJSON, *alertsJSON); code != 0 {
		os.Exit(code)
	}
}

func run(recordsPath, alertsPath string) int {
	fmt.Println("=== Sentiment Fixture Integrity Validation ===")
	fmt.Println()

	records, err := loadJSON[domain.SentimentRecord](recordsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load record fixture: %v\n", err)
		return 1
	}

	alerts, err := loadJSON[domain.Alert](alertsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load alert fixture: %v\n", err)
		return 1
	}

	tables := config.DefaultTables()
	thresholds := config.AlertThresholds{High: -0.5, Medium: -0.3, MinimumSources: 3}

	phases := []*phase{
		validateRecords(records, tables),
		validateBiasCorrection(records, tables),
		validateAlerts(alerts),
		validateAlertConsistency(alerts, records, thresholds),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d sentiment, %d alerts\n", len(records), len(alerts))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Record Integrity ──
// Field presence, value ranges, enum membership, and ID determinism.

var (
	validSources = map[string]bool{
		domain.SourceTwitter:    true,
		domain.SourceFacebook:   true,
		domain.SourceNews:       true,
		domain.SourceGovernment: true,
		domain.SourceCommunity:  true,
	}
	validCategories = map[string]bool{
		domain.CategoryCrime:          true,
		domain.CategoryTraffic:        true,
		domain.CategoryLawEnforcement: true,
		domain.CategoryEmergency:      true,
		domain.CategoryGeneral:        true,
	}
	validLanguages = map[string]bool{
		domain.LanguageEnglish: true,
		domain.LanguagePidgin:  true,
		domain.LanguageYoruba:  true,
	}
)

func validateRecords(records []domain.SentimentRecord, tables config.Tables) *phase {
	p := &phase{name: "Phase 1: Record Integrity"}

	knownAreas := map[string]bool{domain.AreaUnknown: true}
	for _, a := range tables.Areas.Names {
		knownAreas[a] = true
	}

	seen := map[string]int{}
	for i := range records {
		r := &records[i]
		pf := func(format string, args ...any) {
			p.errorf("record %d (ID %s): "+format, append([]any{i, r.ID}, args...)...)
		}

		if r.ID == "" {
			pf("id is empty")
		} else if want := domain.RecordID(r.Text, r.Source); r.ID != want {
			pf("id is not deterministic: expected %s", want)
		}
		if prev, ok := seen[r.ID]; ok {
			pf("duplicate of record %d", prev)
		}
		seen[r.ID] = i

		if r.Text == "" {
			pf("text is empty")
		}
		if !validSources[r.Source] {
			pf("source %q not in calibration set", r.Source)
		}
		if r.RawSentiment < -1 || r.RawSentiment > 1 {
			pf("raw sentiment %g outside [-1, 1]", r.RawSentiment)
		}
		if r.AdjustedSentiment < -1 || r.AdjustedSentiment > 1 {
			pf("adjusted sentiment %g outside [-1, 1]", r.AdjustedSentiment)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			pf("confidence %g outside [0, 1]", r.Confidence)
		}
		if !knownAreas[r.Location] {
			pf("area %q not in area table", r.Location)
		}
		if !validCategories[r.Category] {
			pf("category %q not in category set", r.Category)
		}
		if !validLanguages[r.Language] {
			pf("language %q not in language set", r.Language)
		}
		if r.Timestamp.IsZero() {
			pf("timestamp is zero")
		}
	}
	return p
}

// ── Phase 2: Bias Correction ──
// Recomputes the adjusted score from the raw score and the calibration table.

func validateBiasCorrection(records []domain.SentimentRecord, tables config.Tables) *phase {
	p := &phase{name: "Phase 2: Bias Correction (arithmetic)"}

	corrector := domain.NewCorrector(tables.Calibrations)
	for i := range records {
		r := &records[i]
		expected := corrector.Correct(r.RawSentiment, r.Source)
		if !floatEq(r.AdjustedSentiment, expected) {
			p.errorf("record %d (ID %s): adjusted sentiment %g, recomputed %g (source %s, raw %g)",
				i, r.ID, r.AdjustedSentiment, expected, r.Source, r.RawSentiment)
		}
	}
	return p
}

// ── Phase 3: Alert Integrity ──
// Field-level checks on each alert in isolation.

func validateAlerts(alerts []domain.Alert) *phase {
	p := &phase{name: "Phase 3: Alert Integrity"}

	seen := map[string]bool{}
	for i := range alerts {
		a := &alerts[i]
		pf := func(format string, args ...any) {
			p.errorf("alert %d (ID %s): "+format, append([]any{i, a.ID}, args...)...)
		}

		if a.ID == "" {
			pf("id is empty")
		} else if seen[a.ID] {
			pf("duplicate id")
		}
		seen[a.ID] = true

		if a.Severity != domain.SeverityHigh && a.Severity != domain.SeverityMedium {
			pf("severity %q not in {high, medium}", a.Severity)
		}
		if a.Area == "" || a.Area == domain.AreaUnknown {
			pf("area is %q", a.Area)
		}
		if a.Message == "" {
			pf("message is empty")
		} else if !strings.Contains(a.Message, a.Area) {
			pf("message %q does not mention area %q", a.Message, a.Area)
		}
		if a.Confidence < 0 || a.Confidence > 1 {
			pf("confidence %g outside [0, 1]", a.Confidence)
		}
		if !validCategories[a.AlertType] {
			pf("alert type %q not in category set", a.AlertType)
		}
		if a.Timestamp.IsZero() {
			pf("timestamp is zero")
		}
		if a.Resolved {
			pf("alert is already resolved")
		}
	}
	return p
}

// ── Phase 4: Alert Consistency ──
// Every alert must be backed by enough records in its area, with a mean
// adjusted sentiment that matches the assigned severity.

func validateAlertConsistency(alerts []domain.Alert, records []domain.SentimentRecord, thresholds config.AlertThresholds) *phase {
	p := &phase{name: "Phase 4: Alert Consistency (thresholds)"}

	type areaStats struct {
		count int
		sum   float64
	}
	byArea := map[string]*areaStats{}
	for i := range records {
		r := &records[i]
		s := byArea[r.Location]
		if s == nil {
			s = &areaStats{}
			byArea[r.Location] = s
		}
		s.count++
		s.sum += r.AdjustedSentiment
	}

	for i := range alerts {
		a := &alerts[i]
		s := byArea[a.Area]
		if s == nil {
			p.errorf("alert %d (ID %s): no records for area %q", i, a.ID, a.Area)
			continue
		}
		if s.count < thresholds.MinimumSources {
			p.errorf("alert %d (ID %s): area %q has %d records, minimum is %d",
				i, a.ID, a.Area, s.count, thresholds.MinimumSources)
			continue
		}

		mean := s.sum / float64(s.count)
		expected := ""
		switch {
		case mean <= thresholds.High:
			expected = domain.SeverityHigh
		case mean <= thresholds.Medium:
			expected = domain.SeverityMedium
		}
		if expected == "" {
			p.errorf("alert %d (ID %s): area %q mean %g does not cross threshold %g",
				i, a.ID, a.Area, mean, thresholds.Medium)
		} else if a.Severity != expected {
			p.errorf("alert %d (ID %s): severity %q, expected %q for mean %g",
				i, a.ID, a.Severity, expected, mean)
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
