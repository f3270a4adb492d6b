package graphschema

import "testing"

func TestDefaultDeclaresUniqueIDPerLabel(t *testing.T) {
	s := Default()
	seen := map[Label]bool{}
	for _, d := range s.Declarations {
		if d.Kind == DeclUnique && d.Property == "id" {
			seen[d.Label] = true
		}
	}
	for _, l := range Labels() {
		if !seen[l] {
			t.Fatalf("missing unique id constraint for %s", l)
		}
	}
}

func TestDeclarationCypherIsIdempotent(t *testing.T) {
	u := Declaration{Kind: DeclUnique, Label: LabelProduct, Property: "id"}
	want := "CREATE CONSTRAINT product_id_unique IF NOT EXISTS FOR (n:Product) REQUIRE n.id IS UNIQUE"
	if got := u.Cypher(); got != want {
		t.Fatalf("unique cypher: want=%q got=%q", want, got)
	}
	i := Declaration{Kind: DeclIndex, Label: LabelProduct, Property: "price"}
	want = "CREATE INDEX product_price_index IF NOT EXISTS FOR (n:Product) ON (n.price)"
	if got := i.Cypher(); got != want {
		t.Fatalf("index cypher: want=%q got=%q", want, got)
	}
}

func TestEventRel(t *testing.T) {
	cases := map[string]RelType{
		"view":        RelViewed,
		" Click ":     RelClicked,
		"add_to_cart": RelAddedToCart,
		"wishlist":    RelInteracted,
		"":            RelInteracted,
	}
	for in, want := range cases {
		if got := EventRel(in); got != want {
			t.Fatalf("EventRel(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestRelEndpoints(t *testing.T) {
	r, ok := RelFor(RelContains)
	if !ok || r.From != LabelOrder || r.To != LabelProduct {
		t.Fatalf("CONTAINS endpoints: got=%+v", r)
	}
	if len(Rels()) != 7 {
		t.Fatalf("rels: want=7 got=%d", len(Rels()))
	}
}
