package scene

import "github.com/impel-engine/impel/internal/mathf"

// NodeRef is a generational reference into the node arena. It packs into a
// uint64 so it can ride along as solver user data and be resolved safely
// later: a stale generation simply fails to resolve instead of dangling.
type NodeRef struct {
	Index uint32
	Gen   uint32
}

// Valid reports whether the ref was ever issued. Generation zero is never
// allocated.
func (r NodeRef) Valid() bool { return r.Gen != 0 }

func (r NodeRef) Pack() uint64 {
	return uint64(r.Index)<<32 | uint64(r.Gen)
}

func UnpackRef(u uint64) NodeRef {
	return NodeRef{Index: uint32(u >> 32), Gen: uint32(u)}
}

// Node is the scene-side view of an object: a name and a world transform.
// Physics handles are bound externally by the physics world, which reads
// these transforms before a step and writes them back after.
type Node struct {
	Name     string
	Position mathf.Vec3
	Rotation mathf.Quat
}

type slot struct {
	node Node
	gen  uint32
	live bool
}

// Graph is a flat node arena with slot reuse.
type Graph struct {
	slots []slot
	free  []uint32
	count int
}

func NewGraph() *Graph {
	return &Graph{}
}

// Spawn allocates a node and returns its ref.
func (g *Graph) Spawn(name string, pos mathf.Vec3, rot mathf.Quat) NodeRef {
	if (rot == mathf.Quat{}) {
		rot = mathf.QuatIdentity()
	}
	n := Node{Name: name, Position: pos, Rotation: rot}

	var idx uint32
	if len(g.free) > 0 {
		idx = g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
		g.slots[idx].node = n
		g.slots[idx].gen++
		g.slots[idx].live = true
	} else {
		idx = uint32(len(g.slots))
		g.slots = append(g.slots, slot{node: n, gen: 1, live: true})
	}
	g.count++
	return NodeRef{Index: idx, Gen: g.slots[idx].gen}
}

// Despawn frees the node. The slot's generation is bumped on reuse, so
// outstanding refs to the old node stop resolving. Despawning a node does
// not destroy any physics body bound to it; that is always explicit.
func (g *Graph) Despawn(ref NodeRef) {
	if s := g.slot(ref); s != nil {
		s.live = false
		g.free = append(g.free, ref.Index)
		g.count--
	}
}

// Resolve returns the node for a ref, or false if the ref is stale.
func (g *Graph) Resolve(ref NodeRef) (*Node, bool) {
	if s := g.slot(ref); s != nil {
		return &s.node, true
	}
	return nil, false
}

func (g *Graph) slot(ref NodeRef) *slot {
	if int(ref.Index) >= len(g.slots) {
		return nil
	}
	s := &g.slots[ref.Index]
	if !s.live || s.gen != ref.Gen {
		return nil
	}
	return s
}

// Len is the number of live nodes.
func (g *Graph) Len() int { return g.count }

// Each visits every live node.
func (g *Graph) Each(fn func(NodeRef, *Node)) {
	for i := range g.slots {
		s := &g.slots[i]
		if s.live {
			fn(NodeRef{Index: uint32(i), Gen: s.gen}, &s.node)
		}
	}
}
