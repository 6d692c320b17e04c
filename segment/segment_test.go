package segment

import (
	"strings"
	"testing"

	ragagent "github.com/guychikaAL/RagAgent"
)

func testDoc(text string) ragagent.Document {
	return ragagent.Document{
		ID:   "doc-test",
		Text: text,
		Metadata: ragagent.DocumentMetadata{
			DocumentID:   "doc-test",
			DocumentType: "insurance_claim_pdf",
			SourceType:   "insurance_claim",
		},
	}
}

func claimForm(n, name string) string {
	return "AUTO CLAIM FORM #" + n + "\n" +
		"SECTION 1 - CLAIMANT INFORMATION\n" +
		"Name: " + name + " Account Number: 99887\n" +
		"Date of Incident: 2024-03-1" + n + "\n" +
		"The insured vehicle was struck at an intersection.\n\n"
}

func TestSplitMultipleClaims(t *testing.T) {
	text := claimForm("1", "John Smith") + claimForm("2", "Jane Doe") + claimForm("3", "Bob Wilson")
	s := NewSegmenter()

	records := s.Split(testDoc(text))
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	wantNumbers := []string{"1", "2", "3"}
	wantNames := []string{"John Smith", "Jane Doe", "Bob Wilson"}
	for i, rec := range records {
		if rec.RecordNumber != wantNumbers[i] {
			t.Errorf("record %d: RecordNumber = %q, want %q", i, rec.RecordNumber, wantNumbers[i])
		}
		if rec.SubjectName != wantNames[i] {
			t.Errorf("record %d: SubjectName = %q, want %q", i, rec.SubjectName, wantNames[i])
		}
		if rec.OrdinalIndex != i {
			t.Errorf("record %d: OrdinalIndex = %d", i, rec.OrdinalIndex)
		}
		if !strings.HasPrefix(rec.Text, "AUTO CLAIM FORM #"+wantNumbers[i]) {
			t.Errorf("record %d text does not start at its own header: %q", i, rec.Text[:40])
		}
		if strings.Count(rec.Text, "AUTO CLAIM FORM") != 1 {
			t.Errorf("record %d text bleeds into another claim", i)
		}
	}
}

func TestSplitRecordsAreContiguousSlices(t *testing.T) {
	text := claimForm("1", "John Smith") + claimForm("2", "Jane Doe")
	records := NewSegmenter().Split(testDoc(text))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for i, rec := range records {
		if !strings.Contains(text, rec.Text) {
			t.Errorf("record %d text is not a slice of the document", i)
		}
	}
}

func TestSplitNoBoundariesFallsBackToSingleRecord(t *testing.T) {
	text := "This is a free-form incident narrative without any form markers.\nIt describes a fender bender."
	records := NewSegmenter().Split(testDoc(text))
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Text != strings.TrimSpace(text) {
		t.Errorf("fallback record should span the whole document")
	}
	if rec.RecordNumber != "1" {
		t.Errorf("RecordNumber = %q, want 1", rec.RecordNumber)
	}
	if rec.Title != "Claim Form" {
		t.Errorf("Title = %q, want Claim Form", rec.Title)
	}
}

func TestSplitEmptyDocumentYieldsOneRecord(t *testing.T) {
	records := NewSegmenter().Split(testDoc(""))
	if len(records) != 1 {
		t.Fatalf("expected 1 record for empty document, got %d", len(records))
	}
	if records[0].Text != "" {
		t.Errorf("expected empty record text, got %q", records[0].Text)
	}
}

func TestSplitDeterministicIDs(t *testing.T) {
	text := claimForm("1", "John Smith") + claimForm("2", "Jane Doe")
	doc := testDoc(text)

	first := NewSegmenter().Split(doc)
	second := NewSegmenter().Split(doc)
	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].RecordID != second[i].RecordID {
			t.Errorf("record %d: IDs differ across runs: %s vs %s", i, first[i].RecordID, second[i].RecordID)
		}
		if len(first[i].RecordID) != 16 {
			t.Errorf("record %d: ID length = %d, want 16", i, len(first[i].RecordID))
		}
	}
}

func TestSplitInheritsDocumentMetadata(t *testing.T) {
	doc := testDoc(claimForm("1", "John Smith"))
	doc.Metadata.Title = "claims_batch_01"
	doc.Metadata.Language = "en"

	records := NewSegmenter().Split(doc)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.DocumentID != "doc-test" || rec.DocumentType != "insurance_claim_pdf" {
		t.Errorf("document identity not inherited: %+v", rec)
	}
	if rec.DocumentTitle != "claims_batch_01" || rec.Language != "en" {
		t.Errorf("document metadata not inherited: %+v", rec)
	}
	if rec.TotalCharacters != len(rec.Text) {
		t.Errorf("TotalCharacters = %d, want %d", rec.TotalCharacters, len(rec.Text))
	}
	if rec.TotalWords != len(strings.Fields(rec.Text)) {
		t.Errorf("TotalWords = %d", rec.TotalWords)
	}
}

func TestDetectBoundariesFirstStrategyWins(t *testing.T) {
	// Both the form header and claim number patterns are present; only the
	// form header strategy should contribute boundaries.
	text := "AUTO CLAIM FORM #1\nClaim Number: ABC123\nbody text here\n" +
		strings.Repeat("x", 100) +
		"\nAUTO CLAIM FORM #2\nClaim Number: DEF456\nmore body\n"

	boundaries := DetectBoundaries(text, DefaultStrategies())
	if len(boundaries) != 2 {
		t.Fatalf("expected 2 boundaries, got %d", len(boundaries))
	}
	if boundaries[0].RecordNumber != "1" || boundaries[1].RecordNumber != "2" {
		t.Errorf("unexpected record numbers: %q, %q", boundaries[0].RecordNumber, boundaries[1].RecordNumber)
	}
}

func TestDetectBoundariesClaimNumberFallback(t *testing.T) {
	text := "Claim Number: ABC123\nincident details\n" +
		strings.Repeat("x", 100) +
		"\nClaim Number: DEF456\nother details\n"

	boundaries := DetectBoundaries(text, DefaultStrategies())
	if len(boundaries) != 2 {
		t.Fatalf("expected 2 boundaries, got %d", len(boundaries))
	}
	if boundaries[0].RecordNumber != "ABC123" {
		t.Errorf("RecordNumber = %q, want ABC123", boundaries[0].RecordNumber)
	}
	if boundaries[0].Title != "Claim ABC123" {
		t.Errorf("Title = %q", boundaries[0].Title)
	}
}

func TestDetectBoundariesFirstSectionMarker(t *testing.T) {
	text := "SECTION 1 - CLAIMANT INFORMATION\nName: John Smith\n"
	boundaries := DetectBoundaries(text, DefaultStrategies())
	if len(boundaries) != 1 {
		t.Fatalf("expected 1 boundary, got %d", len(boundaries))
	}
	if boundaries[0].StartChar != 0 || boundaries[0].RecordNumber != "1" {
		t.Errorf("unexpected boundary: %+v", boundaries[0])
	}

	// The same marker mid-document is not a boundary.
	if got := DetectBoundaries("preamble text\n"+text, DefaultStrategies()); got != nil {
		t.Errorf("mid-document section marker should not match, got %v", got)
	}
}

func TestDetectBoundariesDedupeWindow(t *testing.T) {
	near := []Boundary{
		{RecordNumber: "1", StartChar: 0, Title: "first"},
		{RecordNumber: "1b", StartChar: 30, Title: "duplicate"},
		{RecordNumber: "2", StartChar: 200, Title: "second"},
	}
	strategies := []BoundaryStrategy{
		{Name: "fixture", Scan: func(string) []Boundary { return near }},
	}

	got := DetectBoundaries("irrelevant", strategies)
	if len(got) != 2 {
		t.Fatalf("expected 2 boundaries after dedupe, got %d", len(got))
	}
	if got[0].Title != "first" {
		t.Errorf("dedupe should keep the first of a near pair, got %q", got[0].Title)
	}
	if got[1].Title != "second" {
		t.Errorf("second boundary = %q", got[1].Title)
	}
}

func TestDetectBoundariesNoMatch(t *testing.T) {
	if got := DetectBoundaries("nothing recognizable here", DefaultStrategies()); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestExtractSubjectName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "label terminated",
			text: "SECTION 1\nName: John Smith Account Number: 99887",
			want: "John Smith",
		},
		{
			name: "three word name",
			text: "Name: Mary Jane Watson Address: 12 Main St",
			want: "Mary Jane Watson",
		},
		{
			name: "newline terminated",
			text: "Name: Jane Doe\nPolicy: 123",
			want: "Jane Doe",
		},
		{
			name: "no name field",
			text: "Date of Incident: 2024-01-01",
			want: "",
		},
		{
			name: "lowercase name rejected",
			text: "Name: john smith Account Number: 1",
			want: "",
		},
		{
			name: "outside scan window",
			text: strings.Repeat("filler ", 100) + "Name: John Smith Account Number: 1",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSubjectName(tt.text); got != tt.want {
				t.Errorf("ExtractSubjectName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitCustomStrategies(t *testing.T) {
	custom := []BoundaryStrategy{
		{Name: "pipe", Scan: func(text string) []Boundary {
			var bs []Boundary
			for i := 0; i < len(text); i++ {
				if text[i] == '|' {
					bs = append(bs, Boundary{RecordNumber: "x", StartChar: i, Title: "custom"})
				}
			}
			return bs
		}},
	}
	text := "| first entry with some text\n" + strings.Repeat("a", 80) + "\n| second entry body\nmore"
	records := NewSegmenter(WithStrategies(custom)).Split(testDoc(text))
	if len(records) != 2 {
		t.Fatalf("expected 2 records from custom strategy, got %d", len(records))
	}
}
