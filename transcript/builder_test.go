package transcript

import (
	"reflect"
	"testing"
)

func TestAppendPolicy(t *testing.T) {
	b := NewBuilder(Append)
	b.Write("the quick ")
	b.Write("brown fox")
	if got := b.Pending(); got != "the quick brown fox" {
		t.Errorf("Pending() = %q", got)
	}

	b.EndTurn()
	if got := b.Pending(); got != "" {
		t.Errorf("Pending() after EndTurn = %q", got)
	}
	if want := []string{"the quick brown fox"}; !reflect.DeepEqual(b.Segments(), want) {
		t.Errorf("Segments() = %v, want %v", b.Segments(), want)
	}
}

func TestReplacePolicy(t *testing.T) {
	b := NewBuilder(Replace)
	b.Write("the")
	b.Write("the quick")
	b.Write("the quick brown fox")
	if got := b.Pending(); got != "the quick brown fox" {
		t.Errorf("Pending() = %q", got)
	}
}

func TestEndTurnSkipsEmptyPending(t *testing.T) {
	b := NewBuilder(Append)
	b.EndTurn()
	b.Write("   ")
	b.EndTurn()
	if got := b.Segments(); len(got) != 0 {
		t.Errorf("Segments() = %v, want none", got)
	}
}

func TestTextJoinsFinalAndPending(t *testing.T) {
	b := NewBuilder(Append)
	b.Write("first turn. ")
	b.EndTurn()
	b.Write("second turn. ")
	b.EndTurn()
	b.Write("still talking")

	if got := b.Text(); got != "first turn. second turn. still talking" {
		t.Errorf("Text() = %q", got)
	}
	if got := b.Final(); got != "first turn. second turn." {
		t.Errorf("Final() = %q", got)
	}
}

func TestFinalIgnoresPending(t *testing.T) {
	b := NewBuilder(Append)
	b.Write("never finalized")
	if got := b.Final(); got != "" {
		t.Errorf("Final() = %q, want empty", got)
	}
}
