package internal

import "testing"

func TestBuildReport(t *testing.T) {
	convA := CreateTestConversation("conv_500")
	convB := CreateTestConversation("conv_501")
	convC := CreateTestConversation("conv_502")
	store := BuildTestStore("/tmp/batch_1", convA, convB, convC)
	ledger := NewRatingLedger(BuildTestRegistry(convA, convB, convC))
	cfg := DefaultConfig()

	// Rate the third then the first, leave the second untouched.
	if err := ledger.SetDimensionScore("conv_502", annotator, DimPlanCoherence, 1); err != nil {
		t.Fatalf("SetDimensionScore() error = %v", err)
	}
	if err := ledger.SetDimensionScore("conv_500", annotator, DimPlanCoherence, 2); err != nil {
		t.Fatalf("SetDimensionScore() error = %v", err)
	}
	specific := TargetID("conv_500", "navigate to Indian Village Restaurant")
	if err := ledger.SetTargetStatus("conv_500", annotator, specific, StatusComplete); err != nil {
		t.Fatalf("SetTargetStatus() error = %v", err)
	}
	ledger.SetNote("conv_500", annotator, "clean run")

	report := BuildReport(ledger, annotator, store, cfg)

	if report.AnnotatorID != annotator {
		t.Errorf("AnnotatorID = %q", report.AnnotatorID)
	}
	if report.BatchPath != "/tmp/batch_1" {
		t.Errorf("BatchPath = %q", report.BatchPath)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2 (unrated conversation excluded)", len(report.Rows))
	}
	// Batch order, not rating order.
	if report.Rows[0].ConversationID != "conv_500" || report.Rows[1].ConversationID != "conv_502" {
		t.Errorf("row order = %s, %s", report.Rows[0].ConversationID, report.Rows[1].ConversationID)
	}

	first := report.Rows[0]
	if first.Scores[DimPlanCoherence] != 2 {
		t.Errorf("plan score = %d, want 2", first.Scores[DimPlanCoherence])
	}
	if first.Note != "clean run" {
		t.Errorf("Note = %q", first.Note)
	}
	// The specific target's completion implied the general one.
	if first.TargetsCompleted != 2 || first.TargetsIntroduced != 2 {
		t.Errorf("targets = %d/%d, want 2/2", first.TargetsCompleted, first.TargetsIntroduced)
	}
	// (1*1 + 1*1) / (1 + 1)
	if first.OverallScore != 1.0 {
		t.Errorf("OverallScore = %f, want 1.0", first.OverallScore)
	}
	if first.PassFail != "PASS" {
		t.Errorf("PassFail = %q", first.PassFail)
	}
	if first.SeedPhrase != convA.SeedPhrase {
		t.Errorf("SeedPhrase = %q", first.SeedPhrase)
	}
}

func TestBuildReport_EmptyLedger(t *testing.T) {
	conv := CreateTestConversation("conv_510")
	store := BuildTestStore("/tmp/batch_1", conv)
	ledger := NewRatingLedger(BuildTestRegistry(conv))

	report := BuildReport(ledger, annotator, store, DefaultConfig())
	if len(report.Rows) != 0 {
		t.Errorf("Rows = %d, want 0", len(report.Rows))
	}
}
