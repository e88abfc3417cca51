package ai

import (
	"reflect"
	"testing"
)

func TestDeltaDecoder_CompleteStream(t *testing.T) {
	var d DeltaDecoder
	raw := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n" +
		"\n" +
		"data: [DONE]\n"

	got := d.Feed([]byte(raw))
	want := []string{"Hel", "lo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("fragments = %v, want %v", got, want)
	}
	if !d.Done() {
		t.Fatalf("sentinel should mark the decoder done")
	}
}

func TestDeltaDecoder_SplitMidLine(t *testing.T) {
	var d DeltaDecoder
	first := d.Feed([]byte("data: {\"choices\":[{\"delta\":{\"co"))
	if len(first) != 0 {
		t.Fatalf("partial line should emit nothing, got %v", first)
	}
	second := d.Feed([]byte("ntent\":\"abc\"}}]}\ndata: [DONE]\n"))
	if !reflect.DeepEqual(second, []string{"abc"}) {
		t.Fatalf("joined frame wrong: %v", second)
	}
	if !d.Done() {
		t.Fatalf("expected done after sentinel")
	}
}

func TestDeltaDecoder_SkipsMalformedAndEmpty(t *testing.T) {
	var d DeltaDecoder
	raw := "data: {not json}\n" +
		": keepalive comment\n" +
		"data: {\"choices\":[]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"\"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n"

	got := d.Feed([]byte(raw))
	if !reflect.DeepEqual(got, []string{"ok"}) {
		t.Fatalf("only the well-formed non-empty delta should survive: %v", got)
	}
	if d.Done() {
		t.Fatalf("no sentinel was sent")
	}
}

func TestDeltaDecoder_IgnoresFeedsAfterDone(t *testing.T) {
	var d DeltaDecoder
	d.Feed([]byte("data: [DONE]\n"))
	got := d.Feed([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"late\"}}]}\n"))
	if len(got) != 0 {
		t.Fatalf("feeds after [DONE] must be dropped, got %v", got)
	}
}
