package phys

import (
	"sync"

	"github.com/impel-engine/impel/internal/scene"
	"github.com/impel-engine/impel/internal/solver"
)

type EventKind uint8

const (
	CollisionEnter EventKind = iota
	CollisionExit
	TriggerEnter
	TriggerExit
)

func (k EventKind) String() string {
	switch k {
	case CollisionEnter:
		return "collision-enter"
	case CollisionExit:
		return "collision-exit"
	case TriggerEnter:
		return "trigger-enter"
	case TriggerExit:
		return "trigger-exit"
	}
	return "unknown"
}

// ContactEvent is a queued transition. For trigger events A is the trigger
// node and B the body that crossed it.
type ContactEvent struct {
	Kind EventKind
	A, B scene.NodeRef
}

// ContactObserver receives contact transitions for one node. Observers are
// registered explicitly per node instead of being inherited from a node
// base type.
type ContactObserver interface {
	OnCollisionEnter(other scene.NodeRef)
	OnCollisionExit(other scene.NodeRef)
	OnTriggerEnter(other scene.NodeRef)
	OnTriggerExit(other scene.NodeRef)
}

// ContactFuncs adapts plain funcs to ContactObserver. Nil fields are
// skipped.
type ContactFuncs struct {
	CollisionEnter func(other scene.NodeRef)
	CollisionExit  func(other scene.NodeRef)
	TriggerEnter   func(other scene.NodeRef)
	TriggerExit    func(other scene.NodeRef)
}

func (f ContactFuncs) OnCollisionEnter(other scene.NodeRef) {
	if f.CollisionEnter != nil {
		f.CollisionEnter(other)
	}
}

func (f ContactFuncs) OnCollisionExit(other scene.NodeRef) {
	if f.CollisionExit != nil {
		f.CollisionExit(other)
	}
}

func (f ContactFuncs) OnTriggerEnter(other scene.NodeRef) {
	if f.TriggerEnter != nil {
		f.TriggerEnter(other)
	}
}

func (f ContactFuncs) OnTriggerExit(other scene.NodeRef) {
	if f.TriggerExit != nil {
		f.TriggerExit(other)
	}
}

type pairInfo struct {
	a, b    scene.NodeRef
	trigger bool
}

// ContactEventPipeline captures solver contact callbacks (which may run on
// worker threads during a step), queues value events, and dispatches them on
// the simulation thread after all sub-steps. The side table keyed on the
// solver's stable pair key is what makes exit events reliable even when a
// body is destroyed mid-contact: removal callbacks carry no user data.
type ContactEventPipeline struct {
	mu        sync.Mutex
	queue     []ContactEvent
	pairs     map[solver.PairKey]pairInfo
	observers map[scene.NodeRef]ContactObserver
}

func NewContactEventPipeline() *ContactEventPipeline {
	return &ContactEventPipeline{
		pairs:     make(map[solver.PairKey]pairInfo),
		observers: make(map[scene.NodeRef]ContactObserver),
	}
}

// Observe registers obs for a node. One observer per node; registering again
// replaces it.
func (p *ContactEventPipeline) Observe(ref scene.NodeRef, obs ContactObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers[ref] = obs
}

func (p *ContactEventPipeline) Unobserve(ref scene.NodeRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.observers, ref)
}

// OnContactValidate accepts all candidate pairs; filtering happens in the
// solver's layers, not here.
func (p *ContactEventPipeline) OnContactValidate(a, b solver.ContactBody) bool {
	return true
}

// OnContactAdded classifies the pair and queues exactly one Enter event.
// Persisting contacts do not re-enter this path, so the event is emitted
// once per pair lifetime.
func (p *ContactEventPipeline) OnContactAdded(key solver.PairKey, a, b solver.ContactBody) {
	refA := scene.UnpackRef(a.UserData)
	refB := scene.UnpackRef(b.UserData)

	trigger := a.Sensor || b.Sensor
	if trigger && b.Sensor {
		// trigger side goes first
		refA, refB = refB, refA
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pairs[key] = pairInfo{a: refA, b: refB, trigger: trigger}
	kind := CollisionEnter
	if trigger {
		kind = TriggerEnter
	}
	p.queue = append(p.queue, ContactEvent{Kind: kind, A: refA, B: refB})
}

// OnContactRemoved resolves the pair through the side table and queues the
// Exit event. Unknown keys are dropped.
func (p *ContactEventPipeline) OnContactRemoved(key solver.PairKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	info, ok := p.pairs[key]
	if !ok {
		return
	}
	delete(p.pairs, key)
	kind := CollisionExit
	if info.trigger {
		kind = TriggerExit
	}
	p.queue = append(p.queue, ContactEvent{Kind: kind, A: info.a, B: info.b})
}

// Dispatch drains the queue, invoking both participants' observers for each
// event so neither side needs to know it initiated the contact. The queue is
// cleared unconditionally. Called once per Advance, after all sub-steps.
func (p *ContactEventPipeline) Dispatch() {
	p.mu.Lock()
	events := p.queue
	p.queue = nil
	obs := make(map[scene.NodeRef]ContactObserver, len(p.observers))
	for ref, o := range p.observers {
		obs[ref] = o
	}
	p.mu.Unlock()

	for _, e := range events {
		oa, hasA := obs[e.A]
		ob, hasB := obs[e.B]
		switch e.Kind {
		case CollisionEnter:
			if hasA {
				oa.OnCollisionEnter(e.B)
			}
			if hasB {
				ob.OnCollisionEnter(e.A)
			}
		case CollisionExit:
			if hasA {
				oa.OnCollisionExit(e.B)
			}
			if hasB {
				ob.OnCollisionExit(e.A)
			}
		case TriggerEnter:
			if hasA {
				oa.OnTriggerEnter(e.B)
			}
			if hasB {
				ob.OnTriggerEnter(e.A)
			}
		case TriggerExit:
			if hasA {
				oa.OnTriggerExit(e.B)
			}
			if hasB {
				ob.OnTriggerExit(e.A)
			}
		}
	}
}

// Pending reports the queued event count, for diagnostics.
func (p *ContactEventPipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
