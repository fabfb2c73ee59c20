package indexer

import (
	"reflect"
	"testing"
)

func TestChunker_Chunk(t *testing.T) {
	t.Run("blank text yields no chunks", func(t *testing.T) {
		c := NewChunker(3, 1)
		if got := c.Chunk("   \n\t  "); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("text without punctuation is one chunk", func(t *testing.T) {
		c := NewChunker(3, 1)
		got := c.Chunk("a fragment with no sentence ending")
		want := []string{"a fragment with no sentence ending"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("short text fits in one chunk", func(t *testing.T) {
		c := NewChunker(5, 1)
		got := c.Chunk("First. Second. Third.")
		want := []string{"First. Second. Third."}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("windows overlap by configured sentence count", func(t *testing.T) {
		c := NewChunker(2, 1)
		got := c.Chunk("One. Two. Three. Four.")
		want := []string{
			"One. Two.",
			"Two. Three.",
			"Three. Four.",
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("no overlap produces disjoint windows", func(t *testing.T) {
		c := NewChunker(2, 0)
		got := c.Chunk("One. Two. Three. Four. Five.")
		want := []string{
			"One. Two.",
			"Three. Four.",
			"Five.",
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("overlap is clamped below chunk size", func(t *testing.T) {
		c := NewChunker(2, 5)
		got := c.Chunk("One. Two. Three. Four.")
		// clamped to overlap of 1 so the walk always advances
		want := []string{
			"One. Two.",
			"Two. Three.",
			"Three. Four.",
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("mixed terminators split sentences", func(t *testing.T) {
		c := NewChunker(1, 0)
		got := c.Chunk("Really? Yes! Fine.")
		want := []string{"Really?", "Yes!", "Fine."}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})
}
