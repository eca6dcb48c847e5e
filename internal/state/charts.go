package state

import (
	"sync"

	"github.com/google/uuid"
)

// Lifecycle is a chart instance's position in created -> active -> disposed.
type Lifecycle int

const (
	Created Lifecycle = iota
	Active
	Disposed
)

func (l Lifecycle) String() string {
	switch l {
	case Created:
		return "created"
	case Active:
		return "active"
	case Disposed:
		return "disposed"
	}
	return "unknown"
}

// Instance is one rendered chart bound to a mount point.
type Instance[S any] struct {
	ID    string
	Slot  string
	Spec  S
	state Lifecycle
}

// State reports the instance lifecycle state.
func (i *Instance[S]) State() Lifecycle { return i.state }

// Registry maps a page's mount-point slots to their live chart instances.
// A slot holds at most one active instance; Replace disposes the old one
// before creating its successor.
type Registry[S any] struct {
	mu        sync.Mutex
	mounted   map[string]bool
	instances map[string]*Instance[S]
	onDispose func(*Instance[S])
}

// NewRegistry returns a registry for a page with the given mount points.
func NewRegistry[S any](slots ...string) *Registry[S] {
	r := &Registry[S]{instances: make(map[string]*Instance[S])}
	r.Mount(slots...)
	return r
}

// Mount replaces the set of mount points present on the page. Instances for
// slots that disappear are disposed.
func (r *Registry[S]) Mount(slots ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mounted = make(map[string]bool, len(slots))
	for _, s := range slots {
		r.mounted[s] = true
	}
	for slot, inst := range r.instances {
		if !r.mounted[slot] {
			r.dispose(inst)
			delete(r.instances, slot)
		}
	}
}

// Mounted reports whether slot is a mount point on the page.
func (r *Registry[S]) Mounted(slot string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounted[slot]
}

// OnDispose registers a hook called for every disposed instance.
func (r *Registry[S]) OnDispose(fn func(*Instance[S])) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDispose = fn
}

// Replace disposes the slot's current instance and activates a new one
// holding spec. Unmounted slots are a no-op and return nil.
func (r *Registry[S]) Replace(slot string, spec S) *Instance[S] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mounted[slot] {
		return nil
	}
	if old, ok := r.instances[slot]; ok {
		r.dispose(old)
	}

	inst := &Instance[S]{ID: uuid.NewString(), Slot: slot, Spec: spec, state: Created}
	r.instances[slot] = inst
	inst.state = Active
	return inst
}

// Active returns the slot's active instance, or nil.
func (r *Registry[S]) Active(slot string) *Instance[S] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.instances[slot]
}

// ActiveCount reports how many slots hold an active instance.
func (r *Registry[S]) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// DisposeAll disposes every instance, as on a tab switch.
func (r *Registry[S]) DisposeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for slot, inst := range r.instances {
		r.dispose(inst)
		delete(r.instances, slot)
	}
}

func (r *Registry[S]) dispose(inst *Instance[S]) {
	if inst.state == Disposed {
		return
	}
	inst.state = Disposed
	if r.onDispose != nil {
		r.onDispose(inst)
	}
}
