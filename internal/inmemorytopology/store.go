package inmemorytopology

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/circles/internal/nodeid"
	"github.com/specialistvlad/circles/internal/topologystore"
)

// Store implements the topologystore.Store interface using maps and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu        sync.RWMutex
	ids       *nodeid.Sequence
	links     map[nodeid.LinkID]*topologystore.Link
	order     []nodeid.LinkID
	endpoints map[nodeid.EndpointID]*topologystore.Endpoint
	attached  map[nodeid.Handle][]nodeid.EndpointID
	dirty     []nodeid.Handle
	dirtySet  map[nodeid.Handle]struct{}
}

// New creates a new, empty in-memory topology store. Link and endpoint ids
// are drawn from ids, which may be shared with other id spaces.
func New(ids *nodeid.Sequence) topologystore.Store {
	if ids == nil {
		ids = &nodeid.Sequence{}
	}
	return &Store{
		ids:       ids,
		links:     make(map[nodeid.LinkID]*topologystore.Link),
		endpoints: make(map[nodeid.EndpointID]*topologystore.Endpoint),
		attached:  make(map[nodeid.Handle][]nodeid.EndpointID),
		dirtySet:  make(map[nodeid.Handle]struct{}),
	}
}

// Connect creates a link and its mirrored endpoint pair.
func (s *Store) Connect(ctx context.Context, source nodeid.Handle, sourceSlot int, sink nodeid.Handle, sinkSlot int) (topologystore.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link := &topologystore.Link{
		ID:         nodeid.LinkID(s.ids.Next()),
		Source:     source,
		SourceSlot: sourceSlot,
		Sink:       sink,
		SinkSlot:   sinkSlot,
		Inlet:      nodeid.EndpointID(s.ids.Next()),
		Outlet:     nodeid.EndpointID(s.ids.Next()),
	}
	inlet := &topologystore.Endpoint{
		ID:          link.Inlet,
		Role:        topologystore.Inlet,
		Link:        link.ID,
		Owner:       sink,
		Mirror:      link.Outlet,
		MirrorOwner: source,
		Open:        true,
	}
	outlet := &topologystore.Endpoint{
		ID:          link.Outlet,
		Role:        topologystore.Outlet,
		Link:        link.ID,
		Owner:       source,
		Mirror:      link.Inlet,
		MirrorOwner: sink,
	}

	s.links[link.ID] = link
	s.order = append(s.order, link.ID)
	s.endpoints[inlet.ID] = inlet
	s.endpoints[outlet.ID] = outlet
	s.attached[sink] = append(s.attached[sink], inlet.ID)
	s.attached[source] = append(s.attached[source], outlet.ID)
	s.markDirty(source, sink)

	return *link, nil
}

// Disconnect removes a link and both endpoints.
func (s *Store) Disconnect(ctx context.Context, id nodeid.LinkID) (topologystore.Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return topologystore.Link{}, false
	}
	s.removeLink(link)
	s.markDirty(link.Source, link.Sink)
	return *link, true
}

// Retype stores new type codes on the link's inlet.
func (s *Store) Retype(ctx context.Context, id nodeid.LinkID, types topologystore.Types) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inlet, err := s.inletOf(id)
	if err != nil {
		return err
	}
	inlet.Types = types
	inlet.Retyped = true
	s.markDirty(inlet.Owner, inlet.MirrorOwner)
	return nil
}

// ClearRetyped resets the inlet's Retyped flag.
func (s *Store) ClearRetyped(ctx context.Context, id nodeid.LinkID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inlet, err := s.inletOf(id); err == nil {
		inlet.Retyped = false
	}
}

// SetOpen sets the inlet's open flag.
func (s *Store) SetOpen(ctx context.Context, id nodeid.LinkID, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inlet, err := s.inletOf(id)
	if err != nil {
		return err
	}
	if inlet.Open != open {
		inlet.Open = open
		s.markDirty(inlet.Owner)
	}
	return nil
}

// Link looks up a link by id.
func (s *Store) Link(ctx context.Context, id nodeid.LinkID) (topologystore.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[id]
	if !ok {
		return topologystore.Link{}, false
	}
	return *link, true
}

// Links returns every link in creation order.
func (s *Store) Links(ctx context.Context) []topologystore.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := make([]topologystore.Link, 0, len(s.order))
	for _, id := range s.order {
		links = append(links, *s.links[id])
	}
	return links
}

// Endpoint looks up an endpoint by id.
func (s *Store) Endpoint(ctx context.Context, id nodeid.EndpointID) (topologystore.Endpoint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ep, ok := s.endpoints[id]
	if !ok {
		return topologystore.Endpoint{}, false
	}
	return *ep, true
}

// Attached returns the endpoints attached under a node, in attach order.
func (s *Store) Attached(ctx context.Context, h nodeid.Handle) []topologystore.Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.attached[h]
	eps := make([]topologystore.Endpoint, 0, len(ids))
	for _, id := range ids {
		eps = append(eps, *s.endpoints[id])
	}
	return eps
}

// Inlets returns the inlets attached under a node whose mirror is live.
func (s *Store) Inlets(ctx context.Context, h nodeid.Handle) []topologystore.Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var inlets []topologystore.Endpoint
	for _, id := range s.attached[h] {
		ep := s.endpoints[id]
		if ep.Role != topologystore.Inlet {
			continue
		}
		if _, ok := s.endpoints[ep.Mirror]; !ok {
			continue
		}
		inlets = append(inlets, *ep)
	}
	return inlets
}

// Cascade removes every link touching the given nodes.
func (s *Store) Cascade(ctx context.Context, hs ...nodeid.Handle) *topologystore.Cascade {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[nodeid.Handle]struct{}, len(hs))
	for _, h := range hs {
		batch[h] = struct{}{}
	}

	// Plan the whole removal first so a broken mirror aborts before any
	// record is touched.
	var plan []*topologystore.Link
	planned := make(map[nodeid.LinkID]struct{})
	for _, h := range hs {
		for _, id := range s.attached[h] {
			ep := s.endpoints[id]
			if _, ok := s.endpoints[ep.Mirror]; !ok {
				panic(fmt.Errorf("%w: %s under %s lost %s", topologystore.ErrOrphanMirror, ep.ID, h, ep.Mirror))
			}
			if _, both := batch[ep.MirrorOwner]; both && ep.Role == topologystore.Inlet {
				continue
			}
			if _, dup := planned[ep.Link]; dup {
				continue
			}
			link, ok := s.links[ep.Link]
			if !ok {
				panic(fmt.Errorf("%w: %s refers to missing %s", topologystore.ErrOrphanMirror, ep.ID, ep.Link))
			}
			planned[ep.Link] = struct{}{}
			plan = append(plan, link)
		}
	}

	result := &topologystore.Cascade{Nodes: slices.Clone(hs)}
	for _, link := range plan {
		s.removeLink(link)
		result.Links = append(result.Links, *link)
		result.Endpoints += 2
		for _, owner := range []nodeid.Handle{link.Source, link.Sink} {
			if _, deleted := batch[owner]; !deleted {
				s.markDirty(owner)
			}
		}
	}
	for _, h := range hs {
		delete(s.attached, h)
		s.unmarkDirty(h)
	}
	return result
}

// TakeDirty returns and clears the nodes whose links changed.
func (s *Store) TakeDirty(ctx context.Context) []nodeid.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirty := s.dirty
	s.dirty = nil
	clear(s.dirtySet)
	return dirty
}

func (s *Store) inletOf(id nodeid.LinkID) (*topologystore.Endpoint, error) {
	link, ok := s.links[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", topologystore.ErrUnknownLink, id)
	}
	return s.endpoints[link.Inlet], nil
}

func (s *Store) removeLink(link *topologystore.Link) {
	s.detach(link.Sink, link.Inlet)
	s.detach(link.Source, link.Outlet)
	delete(s.endpoints, link.Inlet)
	delete(s.endpoints, link.Outlet)
	delete(s.links, link.ID)
	s.order = slices.DeleteFunc(s.order, func(id nodeid.LinkID) bool { return id == link.ID })
}

func (s *Store) detach(owner nodeid.Handle, id nodeid.EndpointID) {
	ids := slices.DeleteFunc(s.attached[owner], func(e nodeid.EndpointID) bool { return e == id })
	if len(ids) == 0 {
		delete(s.attached, owner)
		return
	}
	s.attached[owner] = ids
}

func (s *Store) markDirty(hs ...nodeid.Handle) {
	for _, h := range hs {
		if _, ok := s.dirtySet[h]; ok {
			continue
		}
		s.dirtySet[h] = struct{}{}
		s.dirty = append(s.dirty, h)
	}
}

func (s *Store) unmarkDirty(h nodeid.Handle) {
	if _, ok := s.dirtySet[h]; !ok {
		return
	}
	delete(s.dirtySet, h)
	s.dirty = slices.DeleteFunc(s.dirty, func(d nodeid.Handle) bool { return d == h })
}
