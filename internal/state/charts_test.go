package state

import "testing"

func TestRegistry_ReplaceDisposesPrevious(t *testing.T) {
	r := NewRegistry[string]("trend", "donut")

	var disposed []string
	r.OnDispose(func(inst *Instance[string]) { disposed = append(disposed, inst.ID) })

	first := r.Replace("trend", "v1")
	if first == nil || first.State() != Active {
		t.Fatalf("first instance = %+v, want active", first)
	}

	second := r.Replace("trend", "v2")
	if first.State() != Disposed {
		t.Errorf("previous instance state = %s, want disposed", first.State())
	}
	if second.State() != Active || second.ID == first.ID {
		t.Errorf("replacement = %+v", second)
	}
	if r.Active("trend") != second {
		t.Error("Active(trend) is not the replacement")
	}
	if r.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", r.ActiveCount())
	}
	if len(disposed) != 1 || disposed[0] != first.ID {
		t.Errorf("dispose hook saw %v", disposed)
	}
}

func TestRegistry_UnmountedSlotIsNoop(t *testing.T) {
	r := NewRegistry[string]("trend")
	if inst := r.Replace("waterfall", "x"); inst != nil {
		t.Errorf("Replace on unmounted slot returned %+v", inst)
	}
	if r.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d, want 0", r.ActiveCount())
	}
	if r.Mounted("waterfall") {
		t.Error("waterfall should not be mounted")
	}
}

func TestRegistry_MountDisposesRemovedSlots(t *testing.T) {
	r := NewRegistry[int]("a", "b")
	a := r.Replace("a", 1)
	b := r.Replace("b", 2)

	r.Mount("b", "c")
	if a.State() != Disposed {
		t.Errorf("a = %s, want disposed", a.State())
	}
	if b.State() != Active {
		t.Errorf("b = %s, want active", b.State())
	}

	r.DisposeAll()
	if b.State() != Disposed || r.ActiveCount() != 0 {
		t.Errorf("DisposeAll left b=%s count=%d", b.State(), r.ActiveCount())
	}
}

func TestLifecycleString(t *testing.T) {
	for l, want := range map[Lifecycle]string{Created: "created", Active: "active", Disposed: "disposed", Lifecycle(9): "unknown"} {
		if l.String() != want {
			t.Errorf("%d.String() = %s, want %s", l, l.String(), want)
		}
	}
}
