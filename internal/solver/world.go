package solver

import (
	"sort"
	"sync"

	"github.com/impel-engine/impel/internal/mathf"
)

// PairKey is a stable, order-independent key for a body pair. It survives
// body destruction, which is what lets contact-removal notifications work
// without user data.
type PairKey uint64

func MakePairKey(a, b BodyID) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey(uint64(a)<<32 | uint64(b))
}

// ContactBody is the snapshot handed to contact callbacks. Callbacks may run
// on worker threads during Step; the snapshot avoids handing out *Body.
type ContactBody struct {
	ID       BodyID
	UserData uint64
	Sensor   bool
}

// ContactListener receives contact transitions during Step. OnContactRemoved
// carries only the pair key: by the time a pair dies one or both bodies may
// already be destroyed, so there is no user data to give.
type ContactListener interface {
	OnContactValidate(a, b ContactBody) bool
	OnContactAdded(key PairKey, a, b ContactBody)
	OnContactRemoved(key PairKey)
}

// World owns body storage and advances the simulation one fixed step at a
// time. Topology mutations (create/add/remove/destroy) must come from the
// simulation thread; the mutex exists for property access from job workers.
type World struct {
	mu       sync.Mutex
	gravity  mathf.Vec3
	bodies   map[BodyID]*Body
	nextID   BodyID
	listener ContactListener

	pairs map[PairKey]uint64
	stamp uint64
}

func NewWorld() *World {
	return &World{
		gravity: mathf.V3(0, -9.81, 0),
		bodies:  make(map[BodyID]*Body),
		nextID:  1,
		pairs:   make(map[PairKey]uint64),
	}
}

func (w *World) SetGravity(g mathf.Vec3) { w.gravity = g }
func (w *World) Gravity() mathf.Vec3     { return w.gravity }

func (w *World) SetContactListener(l ContactListener) { w.listener = l }

// CreateBody allocates a body outside the simulation. It does not collide
// until AddBody.
func (w *World) CreateBody(s BodyCreationSettings) BodyID {
	id := w.nextID
	w.nextID++
	rot := s.Rotation
	if (rot == mathf.Quat{}) {
		rot = mathf.QuatIdentity()
	}
	mass := s.Mass
	if mass <= 0 {
		mass = 1
	}
	gf := s.GravityFactor
	if gf == 0 {
		gf = 1
	}
	w.bodies[id] = &Body{
		ID:             id,
		Shape:          s.Shape,
		Motion:         s.Motion,
		Layer:          s.Layer,
		Sensor:         s.Sensor,
		UserData:       s.UserData,
		Position:       s.Position,
		Rotation:       rot,
		Mass:           mass,
		Friction:       s.Friction,
		Restitution:    s.Restitution,
		LinearDamping:  s.LinearDamping,
		AngularDamping: s.AngularDamping,
		GravityFactor:  gf,
	}
	return id
}

// AddBody inserts the body into the simulation.
func (w *World) AddBody(id BodyID, activate bool) {
	if b, ok := w.bodies[id]; ok {
		b.inWorld = true
		if !activate {
			b.Velocity = mathf.Vec3{}
			b.AngularVelocity = mathf.Vec3{}
		}
	}
}

// RemoveBody takes the body out of the simulation but keeps the resource.
func (w *World) RemoveBody(id BodyID) {
	if b, ok := w.bodies[id]; ok {
		b.inWorld = false
	}
}

// DestroyBody releases the body. Any contact pair it participated in is
// reported removed on the next Step, keyed by pair key only.
func (w *World) DestroyBody(id BodyID) {
	delete(w.bodies, id)
}

// WithBody runs fn with lock-guarded access to the body. Returns false for
// unknown ids without calling fn.
func (w *World) WithBody(id BodyID, fn func(*Body)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bodies[id]
	if !ok {
		return false
	}
	fn(b)
	return true
}

// ActiveBodies snapshots the ids of in-world dynamic bodies, sorted for
// deterministic iteration.
func (w *World) ActiveBodies() []BodyID {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]BodyID, 0, len(w.bodies))
	for id, b := range w.bodies {
		if b.inWorld && b.Motion == MotionDynamic {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (w *World) inWorldBodies() []*Body {
	out := make([]*Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		if b.inWorld {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Step advances the world by dt. Integration fans out across the job system
// and the call blocks until the step's barrier completes; collision
// detection and response then run on the calling thread.
func (w *World) Step(dt float32, js JobSystem) error {
	w.stamp++

	active := w.inWorldBodies()
	dynamic := active[:0:0]
	for _, b := range active {
		if b.Motion == MotionDynamic {
			dynamic = append(dynamic, b)
		}
	}

	const grain = 32
	barrier := js.NewBarrier()
	jobs := make([]*Job, 0, len(dynamic)/grain+1)
	for start := 0; start < len(dynamic); start += grain {
		end := start + grain
		if end > len(dynamic) {
			end = len(dynamic)
		}
		chunk := dynamic[start:end]
		j, err := js.CreateJob("physics:integrate", barrier, func() {
			for _, b := range chunk {
				w.integrate(b, dt)
			}
		}, 0)
		if err != nil {
			return err
		}
		jobs = append(jobs, j)
	}
	js.WaitBarrier(barrier)
	for _, j := range jobs {
		js.FreeJob(j)
	}

	w.collide(active)
	w.expirePairs()
	return nil
}

func (w *World) integrate(b *Body, dt float32) {
	b.Velocity = b.Velocity.Add(w.gravity.Scale(b.GravityFactor * dt))
	b.Velocity = b.Velocity.Add(b.force.Scale(dt / b.Mass))
	b.AngularVelocity = b.AngularVelocity.Add(b.torque.Scale(dt / b.Mass))
	b.force = mathf.Vec3{}
	b.torque = mathf.Vec3{}

	b.Velocity = b.Velocity.Scale(1 / (1 + b.LinearDamping*dt))
	b.AngularVelocity = b.AngularVelocity.Scale(1 / (1 + b.AngularDamping*dt))

	b.Position = b.Position.Add(b.Velocity.Scale(dt))
	if !b.AngularVelocity.IsZero() {
		b.Rotation = b.Rotation.Integrate(b.AngularVelocity, dt)
	}
}

func (w *World) touchPair(a, b *Body) {
	key := MakePairKey(a.ID, b.ID)
	if _, seen := w.pairs[key]; !seen && w.listener != nil {
		ca := ContactBody{ID: a.ID, UserData: a.UserData, Sensor: a.Sensor}
		cb := ContactBody{ID: b.ID, UserData: b.UserData, Sensor: b.Sensor}
		if !w.listener.OnContactValidate(ca, cb) {
			return
		}
		w.listener.OnContactAdded(key, ca, cb)
	}
	w.pairs[key] = w.stamp
}

// expirePairs reports pairs not seen this step as removed. This covers both
// separation and mid-contact destruction.
func (w *World) expirePairs() {
	for key, stamp := range w.pairs {
		if stamp != w.stamp {
			delete(w.pairs, key)
			if w.listener != nil {
				w.listener.OnContactRemoved(key)
			}
		}
	}
}
