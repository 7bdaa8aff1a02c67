package sources

import (
	"strings"
	"testing"

	"github.com/skelly-dev/doxsearch/internal/parser"
)

func TestDoxygenPageNames(t *testing.T) {
	sense, err := NewURLScheme("", "", true)
	if err != nil {
		t.Fatalf("NewURLScheme failed: %v", err)
	}
	folded, err := NewURLScheme("", "", false)
	if err != nil {
		t.Fatalf("NewURLScheme failed: %v", err)
	}

	cases := []struct {
		got, want string
	}{
		{sense.CompoundPage(parser.SymbolClass, "hkmpc"), "classhkmpc.html"},
		{sense.CompoundPage(parser.SymbolStruct, "hkmpc::Vehicle"), "structhkmpc_1_1Vehicle.html"},
		{folded.CompoundPage(parser.SymbolStruct, "hkmpc::Vehicle"), "structhkmpc_1_1_vehicle.html"},
		{sense.CompoundPage(parser.SymbolNamespace, "control"), "namespacecontrol.html"},
		{sense.CompoundPage(parser.SymbolClass, "_MPCData"), "class__MPCData.html"},
		{sense.FilePage("src/hkmpc.h"), "hkmpc_8h.html"},
		{sense.EscapeName("vector< T >"), "vector_3_01T_01_4"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, tc.got)
		}
	}
}

func TestRenderUsesBaseAndTemplate(t *testing.T) {
	target := Target{
		Kind:      "method",
		Name:      "solve",
		Scope:     "control::Controller",
		Qualified: "control::Controller::solve",
		File:      "src/controller.cpp",
		Line:      12,
		Page:      "classcontrol_1_1Controller.html",
		Anchor:    "a1",
	}

	plain, _ := NewURLScheme("", "", true)
	if got, _ := plain.Render(target); got != "classcontrol_1_1Controller.html#a1" {
		t.Fatalf("unexpected relative target %q", got)
	}

	based, _ := NewURLScheme("https://docs.example.com/api/", "", true)
	if got, _ := based.Render(target); got != "https://docs.example.com/api/classcontrol_1_1Controller.html#a1" {
		t.Fatalf("unexpected based target %q", got)
	}

	source, err := NewURLScheme("https://git.example.com/repo/", "blob/main/{{.File}}#L{{.Line}}", true)
	if err != nil {
		t.Fatalf("NewURLScheme failed: %v", err)
	}
	if got, _ := source.Render(target); got != "https://git.example.com/repo/blob/main/src/controller.cpp#L12" {
		t.Fatalf("unexpected templated target %q", got)
	}

	broken, err := NewURLScheme("", "{{.Missing}}", true)
	if err != nil {
		t.Fatalf("NewURLScheme failed: %v", err)
	}
	if _, err := broken.Render(target); err == nil || !strings.Contains(err.Error(), "control::Controller::solve") {
		t.Fatalf("expected template error naming the symbol, got %v", err)
	}
	if _, err := NewURLScheme("", "{{.Page", true); err == nil {
		t.Fatalf("expected template parse error")
	}
}

func TestMemberAnchorIsStable(t *testing.T) {
	a := MemberAnchor("control::wrapAngle", "(c_float angle)")
	if a != MemberAnchor("control::wrapAngle", "(c_float angle)") {
		t.Fatalf("expected the same anchor twice")
	}
	if len(a) != 33 || a[0] != 'a' {
		t.Fatalf("expected a<32 hex> anchor, got %q", a)
	}
	if a == MemberAnchor("control::wrapAngle", "(double angle)") {
		t.Fatalf("expected overloads to get different anchors")
	}
}
