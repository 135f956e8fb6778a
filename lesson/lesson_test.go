package lesson

import (
	"reflect"
	"testing"
)

func TestNormalizeSteps(t *testing.T) {
	items := []DevelopmentItem{
		Structured{Title: "Warm up", Description: "Recall"},
		Freeform{Text: "Observe slides"},
		Structured{Step: 7, Description: "Discuss"},
	}
	got := NormalizeSteps(items)
	want := []Step{
		{Step: 1, Title: "Warm up", Description: "Recall"},
		{Step: 2, Description: "Observe slides"},
		{Step: 7, Description: "Discuss"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTimeString(t *testing.T) {
	if got := (Time{Start: "8:00", End: "8:40"}).String(); got != "8:00 – 8:40" {
		t.Fatalf("unexpected time %q", got)
	}
	if got := (Time{Text: "8:00-8:40am"}).String(); got != "8:00-8:40am" {
		t.Fatalf("unexpected combined time %q", got)
	}
	if got := (Time{}).String(); got != "" {
		t.Fatalf("expected empty time, got %q", got)
	}
}

func TestLabelBundlesKeyedIdentically(t *testing.T) {
	if len(englishLabels) != len(kiswahiliLabels) {
		t.Fatalf("bundles differ in size: %d vs %d", len(englishLabels), len(kiswahiliLabels))
	}
	for k := range englishLabels {
		if _, ok := kiswahiliLabels[k]; !ok {
			t.Fatalf("kiswahili bundle missing %s", k)
		}
	}
}

func TestLabelsForReturnsCopy(t *testing.T) {
	sw := LabelsFor(Kiswahili)
	if !sw.IsSecondLanguage || sw.Get(FieldTitle) != "MPANGO WA SOMO" {
		t.Fatalf("unexpected kiswahili labels %+v", sw)
	}
	sw.Labels[FieldTitle] = "changed"
	if LabelsFor(Kiswahili).Get(FieldTitle) != "MPANGO WA SOMO" {
		t.Fatalf("static bundle was mutated")
	}
	en := LabelsFor("fr")
	if en.Language != English || en.IsSecondLanguage {
		t.Fatalf("unknown language should fall back to english, got %+v", en)
	}
	if en.Get("unknown-field") != "unknown-field" {
		t.Fatalf("unknown field should echo its name")
	}
}
