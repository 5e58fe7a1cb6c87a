package brain

import "testing"

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("b", "second", Sitter); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("a", "first", Chaser); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register("a", "again", Chaser); err == nil {
		t.Error("Expected duplicate registration to fail")
	}

	list := r.List()
	if len(list) != 2 || list[0].Name != "a" || list[1].Name != "b" {
		t.Errorf("Expected sorted [a b], got %v", list)
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("Expected unknown strategy to fail")
	}

	first, _ := r.Get("a")
	second, _ := r.Get("a")
	if first == nil || second == nil {
		t.Fatal("Expected brains from factory")
	}
}

func TestDefaultRegistryBuiltins(t *testing.T) {
	want := []string{"aggressive", "chaser", "coward", "sitter"}
	list := DefaultRegistry.List()
	if len(list) != len(want) {
		t.Fatalf("Expected %d built-ins, got %v", len(want), list)
	}
	for i, info := range list {
		if info.Name != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, info.Name)
		}
		if info.Description == "" {
			t.Errorf("Expected description for %s", info.Name)
		}
	}

}
