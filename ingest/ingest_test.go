package ingest

import (
	"errors"
	"strings"
	"testing"

	ragagent "github.com/guychikaAL/RagAgent"
)

const claimText = `AUTO CLAIM FORM #1

Claim Number: CLM001

Date of Loss: 03/15/2024 at 14:30

The insured vehicle was struck from behind while stopped at a red light.
The police report was filed the same day and the other driver admitted fault.`

func TestIngestFileBuildsDocument(t *testing.T) {
	ing := NewIngestor()
	doc, err := ing.IngestFile([]byte(claimText), "claim_001.txt")
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if doc.ID == "" || len(doc.ID) != 16 {
		t.Fatalf("document ID = %q, want 16-char hash", doc.ID)
	}
	md := doc.Metadata
	if md.DocumentID != doc.ID {
		t.Errorf("metadata DocumentID = %q, want %q", md.DocumentID, doc.ID)
	}
	if md.SourceFile != "claim_001.txt" {
		t.Errorf("SourceFile = %q", md.SourceFile)
	}
	if md.DocumentType != "insurance_claim_pdf" {
		t.Errorf("DocumentType = %q", md.DocumentType)
	}
	if md.SourceType != "insurance_claim" {
		t.Errorf("SourceType = %q", md.SourceType)
	}
	if md.Title != "AUTO CLAIM FORM #1" {
		t.Errorf("Title = %q", md.Title)
	}
	if md.Language != "en" {
		t.Errorf("Language = %q", md.Language)
	}
	if md.TotalParagraphs != 4 {
		t.Errorf("TotalParagraphs = %d, want 4", md.TotalParagraphs)
	}
	if md.TotalCharacters != len(doc.Text) {
		t.Errorf("TotalCharacters = %d, want %d", md.TotalCharacters, len(doc.Text))
	}
	if md.TotalWords != len(strings.Fields(doc.Text)) {
		t.Errorf("TotalWords = %d", md.TotalWords)
	}
	if md.IngestRunID == "" {
		t.Error("IngestRunID is empty")
	}
	if md.IngestedAt == 0 {
		t.Error("IngestedAt is zero")
	}

	var gotDate bool
	for _, d := range md.DatesDetected {
		if d == "03/15/2024" {
			gotDate = true
		}
	}
	if !gotDate {
		t.Errorf("DatesDetected = %v, want 03/15/2024 present", md.DatesDetected)
	}
	if len(md.TimesDetected) == 0 || !strings.HasPrefix(md.TimesDetected[0], "14:30") {
		t.Errorf("TimesDetected = %v, want 14:30 first", md.TimesDetected)
	}
}

func TestIngestFileDeterministicID(t *testing.T) {
	ing := NewIngestor()
	a, err := ing.IngestFile([]byte(claimText), "claim_001.txt")
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	b, err := ing.IngestFile([]byte(claimText), "claim_001.txt")
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if a.ID != b.ID {
		t.Errorf("same file produced different IDs: %q vs %q", a.ID, b.ID)
	}
	if a.Metadata.IngestRunID == b.Metadata.IngestRunID {
		t.Error("IngestRunID should differ between runs")
	}

	c, err := ing.IngestFile([]byte(claimText), "claim_002.txt")
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if c.ID == a.ID {
		t.Error("different filenames should produce different IDs")
	}
}

func TestIngestFileEmpty(t *testing.T) {
	ing := NewIngestor()
	_, err := ing.IngestFile(nil, "empty.txt")
	if err == nil {
		t.Fatal("expected error for empty content")
	}
	var ie *ragagent.ErrIngest
	if !errors.As(err, &ie) {
		t.Fatalf("error type = %T, want *ragagent.ErrIngest", err)
	}
	if ie.Source != "empty.txt" {
		t.Errorf("error Source = %q", ie.Source)
	}
}

func TestIngestFileTooLarge(t *testing.T) {
	ing := NewIngestor()
	_, err := ing.IngestFile(make([]byte, maxContentBytes+1), "huge.txt")
	var ie *ragagent.ErrIngest
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want *ragagent.ErrIngest", err)
	}
}

func TestIngestReader(t *testing.T) {
	ing := NewIngestor()
	doc, err := ing.IngestReader(strings.NewReader("A short claim note about the fender."), "note.txt")
	if err != nil {
		t.Fatalf("IngestReader: %v", err)
	}
	if doc.Text != "A short claim note about the fender." {
		t.Errorf("Text = %q", doc.Text)
	}
}

func TestIngestTextCustomOptions(t *testing.T) {
	ing := NewIngestor(WithDocumentType("medical_record"), WithSourceType("hospital"))
	doc := ing.IngestText("Patient admitted overnight.", "record_7")
	if doc.Metadata.DocumentType != "medical_record" {
		t.Errorf("DocumentType = %q", doc.Metadata.DocumentType)
	}
	if doc.Metadata.SourceType != "hospital" {
		t.Errorf("SourceType = %q", doc.Metadata.SourceType)
	}
}

func TestContentTypeFromExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want ContentType
	}{
		{".pdf", TypePDF},
		{".PDF", TypePDF},
		{".md", TypeMarkdown},
		{".markdown", TypeMarkdown},
		{".html", TypeHTML},
		{".htm", TypeHTML},
		{".txt", TypePlainText},
		{".xyz", TypePlainText},
		{"", TypePlainText},
	}
	for _, tt := range tests {
		if got := ContentTypeFromExtension(tt.ext); got != tt.want {
			t.Errorf("ContentTypeFromExtension(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestMarkdownExtractor(t *testing.T) {
	src := "# Incident Report\n\nThe *other* driver ran a [red light](http://example.com).\n\n```\nplate: XYZ-123\n```\n"
	text, err := NewMarkdownExtractor().Extract([]byte(src))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, want := range []string{"Incident Report", "The other driver ran a red light.", "plate: XYZ-123"} {
		if !strings.Contains(text, want) {
			t.Errorf("extracted text missing %q:\n%s", want, text)
		}
	}
	for _, banned := range []string{"#", "*", "[", "```"} {
		if strings.Contains(text, banned) {
			t.Errorf("markdown syntax %q leaked into output:\n%s", banned, text)
		}
	}
}

func TestPDFExtractorRejectsEmpty(t *testing.T) {
	if _, err := NewPDFExtractor().ExtractPaged(nil); err == nil {
		t.Fatal("expected error for empty content")
	}
	if _, err := NewPDFExtractor().ExtractPaged([]byte("not a pdf")); err == nil {
		t.Fatal("expected error for invalid content")
	}
}

func TestRemovePageNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading", "3\nClaim details follow", "Claim details follow"},
		{"trailing", "Claim details end\n 12 ", "Claim details end"},
		{"page label", "see Page 4 for photos", "see  for photos"},
		{"inline number kept", "deductible of 500 applies", "deductible of 500 applies"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removePageNumbers(tt.in); got != tt.want {
				t.Errorf("removePageNumbers(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractDates(t *testing.T) {
	text := "Loss on 03/15/2024, reported 03/16/2024, repeated 03/15/2024. ISO form 2024-03-15. Follow-up March 20, 2024."
	dates := extractDates(text)

	want := []string{"03/15/2024", "03/16/2024", "2024-03-15", "March 20, 2024"}
	if len(dates) != len(want) {
		t.Fatalf("extractDates = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %q, want %q", i, dates[i], want[i])
		}
	}
}

func TestExtractDatesCapped(t *testing.T) {
	var b strings.Builder
	days := []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12", "13", "14", "15"}
	for _, d := range days {
		b.WriteString("01/" + d + "/2024 ")
	}
	dates := extractDates(b.String())
	if len(dates) != maxDetectedEntities {
		t.Errorf("len(dates) = %d, want cap %d", len(dates), maxDetectedEntities)
	}
}

func TestExtractTimes(t *testing.T) {
	times := extractTimes("Accident at 14:30, call logged 9:05 pm, tow at 14:30.")
	if len(times) != 2 {
		t.Fatalf("extractTimes = %v, want 2 unique entries", times)
	}
	if times[0] != "14:30" {
		t.Errorf("times[0] = %q, want 14:30", times[0])
	}
	if !strings.HasPrefix(times[1], "9:05") {
		t.Errorf("times[1] = %q, want 9:05 pm", times[1])
	}
}

func TestNumericDensity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "low"},
		{"prose", "The vehicle sustained damage to the rear bumper and trunk lid.", "low"},
		{"form-like", "Policy number 1234 on file here today", "medium"},
		{"ledger", "INV 9928 1034 5561 7789", "high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := numericDensity(tt.text); got != tt.want {
				t.Errorf("numericDensity(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestHasHeadings(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			"three caps headings",
			"CLAIMANT INFORMATION\nsome prose\nVEHICLE DETAILS\nmore prose\nACCIDENT DESCRIPTION",
			true,
		},
		{
			"title case headings",
			"Claimant Information\nVehicle Details\nAccident Description",
			true,
		},
		{
			"too few headings",
			"CLAIMANT INFORMATION\nthe rest reads like ordinary prose\nVEHICLE DETAILS",
			false,
		},
		{
			"plain prose",
			"the vehicle was towed to the shop\nthe adjuster inspected it the next day",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasHeadings(tt.text); got != tt.want {
				t.Errorf("hasHeadings = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		fallback string
		want     string
	}{
		{"first short line", "AUTO CLAIM FORM #7\n\nbody text", "claim_7", "AUTO CLAIM FORM #7"},
		{"sentence line falls back", "The claim was filed on time.\nbody", "claim_7", "claim_7"},
		{"empty text falls back", "", "claim_7", "claim_7"},
		{"skips leading blanks", "\n\n  \nPOLICE REPORT\nbody", "fallback", "POLICE REPORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle(tt.text, tt.fallback); got != tt.want {
				t.Errorf("extractTitle = %q, want %q", got, tt.want)
			}
		})
	}
}
