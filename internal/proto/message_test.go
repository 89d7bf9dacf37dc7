package proto

import "testing"

func TestRenderShapes(t *testing.T) {
	if got := Joined("bob"); got != "bob joined." {
		t.Fatalf("unexpected join frame: %q", got)
	}
	if got := Left("alice"); got != "alice left" {
		t.Fatalf("unexpected left frame: %q", got)
	}
	if got := Message("alice", "hi"); got != "alice :: hi" {
		t.Fatalf("unexpected message frame: %q", got)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		frame string
		want  Frame
	}{
		{"alice :: hi", Frame{Kind: FrameMessage, User: "alice", Text: "hi"}},
		{"alice :: a :: b", Frame{Kind: FrameMessage, User: "alice", Text: "a :: b"}},
		{"alice :: ", Frame{Kind: FrameMessage, User: "alice", Text: ""}},
		{"bob joined.", Frame{Kind: FrameJoined, User: "bob"}},
		{"bob left", Frame{Kind: FrameLeft, User: "bob"}},
		{RejectionNotice, Frame{Kind: FrameRejected, Text: RejectionNotice}},
		{"something else", Frame{Kind: FrameUnknown, Text: "something else"}},
	}

	for _, tc := range cases {
		if got := Parse(tc.frame); got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.frame, got, tc.want)
		}
	}
}
