package embedding

import "testing"

func TestNewGenAIEngine_Validation(t *testing.T) {
	t.Run("requires an API key", func(t *testing.T) {
		if _, err := NewGenAIEngine("", "gemini-embedding-001", TaskSemanticSimilarity); err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("rejects unknown task types", func(t *testing.T) {
		if _, err := NewGenAIEngine("key", "gemini-embedding-001", "CLASSIFICATION"); err == nil {
			t.Fatal("expected error for unsupported task type")
		}
	})

	t.Run("defaults model and task type", func(t *testing.T) {
		e, err := NewGenAIEngine("key", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.model != "gemini-embedding-001" {
			t.Errorf("model = %q", e.model)
		}
		if e.taskType != TaskSemanticSimilarity {
			t.Errorf("taskType = %q", e.taskType)
		}
		if e.Name() != "genai:gemini-embedding-001" {
			t.Errorf("Name() = %q", e.Name())
		}
		if e.Dimensions() != 768 {
			t.Errorf("Dimensions() = %d", e.Dimensions())
		}
	})
}
