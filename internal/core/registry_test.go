package core

import (
	"errors"
	"testing"
)

func TestRegistry(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(Definition{Info: EntityInfo{Key: "team", Headers: []string{"name", "description"}}})
	Register(Definition{Info: EntityInfo{Key: "skill", Headers: []string{"name", "description"}}})

	if got := Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}

	all := All()
	if all[0].Info.Key != "skill" || all[1].Info.Key != "team" {
		t.Errorf("All() order = %s,%s, want skill,team", all[0].Info.Key, all[1].Info.Key)
	}

	def, ok := Get("team")
	if !ok {
		t.Fatal("Get(team) not found")
	}
	if len(def.Info.ExportHeaders) != 2 {
		t.Errorf("ExportHeaders should default to Headers, got %v", def.Info.ExportHeaders)
	}

	for _, name := range []string{"team", "Teams", " TEAM "} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q) = %v", name, err)
		}
	}

	if _, err := Lookup("widget"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Lookup(widget) = %v, want ErrUnknownEntity", err)
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	Clear()
	t.Cleanup(Clear)

	Register(Definition{Info: EntityInfo{Key: "team"}})

	defer func() {
		if recover() == nil {
			t.Error("registering a duplicate key should panic")
		}
	}()
	Register(Definition{Info: EntityInfo{Key: "team"}})
}
