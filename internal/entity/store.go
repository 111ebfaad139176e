package entity

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors returned while assembling the topology.
var (
	ErrUnknownInstallation = errors.New("unknown installation")
	ErrUnknownDevice       = errors.New("unknown device")
	ErrUnknownContainer    = errors.New("unknown container")
)

// Store is an arena of entities addressed by their identifiers. Topology is
// added once during setup; afterwards only resource values change.
//
// All methods are safe for concurrent use. Apply commits a batch of values
// under a single write lock, so listings never observe a partial batch.
type Store struct {
	mu sync.RWMutex

	installations []int64
	instByID      map[int64]*Installation
	groupKeys     map[int64]map[string]struct{}
	devices       map[DeviceID]*Device
	containers    map[ContainerID]*Container
	resources     map[string]*Resource
	codes         map[ContainerID]map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		instByID:   make(map[int64]*Installation),
		groupKeys:  make(map[int64]map[string]struct{}),
		devices:    make(map[DeviceID]*Device),
		containers: make(map[ContainerID]*Container),
		resources:  make(map[string]*Resource),
		codes:      make(map[ContainerID]map[string]string),
	}
}

// AddInstallation registers an installation. Adding it twice is a no-op.
func (s *Store) AddInstallation(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.instByID[id]; ok {
		return
	}
	s.installations = append(s.installations, id)
	s.instByID[id] = &Installation{ID: id}
	s.groupKeys[id] = make(map[string]struct{})
}

// AddGroup subscribes an installation to a group code. Codes that normalize
// to an already subscribed group are ignored; it reports whether the code was added.
func (s *Store) AddGroup(installation int64, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instByID[installation]
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownInstallation, installation)
	}
	norm := ParseGroupCode(code)
	if _, ok := s.groupKeys[installation][norm]; ok {
		return false, nil
	}
	s.groupKeys[installation][norm] = struct{}{}
	inst.Groups = append(inst.Groups, code)
	return true, nil
}

// AddDevice registers a device under its installation.
func (s *Store) AddDevice(d Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instByID[d.ID.Installation]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInstallation, d.ID.Installation)
	}
	if _, ok := s.devices[d.ID]; !ok {
		inst.Devices = append(inst.Devices, d.ID)
	} else {
		d.Things = s.devices[d.ID].Things
		d.Slaves = s.devices[d.ID].Slaves
	}
	s.devices[d.ID] = &d
	return nil
}

// AddContainer registers a thing or a slave under its device.
func (s *Store) AddContainer(c Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev, ok := s.devices[c.ID.DeviceID]
	if !ok {
		return fmt.Errorf("%w: %d/%d", ErrUnknownDevice, c.ID.Installation, c.ID.Device)
	}
	if existing, ok := s.containers[c.ID]; ok {
		existing.Name = c.Name
		return nil
	}
	c.Resources = nil
	s.containers[c.ID] = &c
	s.codes[c.ID] = make(map[string]string)
	if c.ID.Kind == ContainerSlave {
		dev.Slaves = append(dev.Slaves, c.ID)
	} else {
		dev.Things = append(dev.Things, c.ID)
	}
	return nil
}

// AddResource registers a resource under its container. A resource with the
// same code replaces the previous definition.
func (s *Store) AddResource(r Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.containers[r.Container]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownContainer, r.Container.Key(r.Code))
	}
	if _, ok := s.resources[r.Key]; !ok {
		c.Resources = append(c.Resources, r.Key)
	}
	s.codes[r.Container][r.Code] = r.Key
	s.resources[r.Key] = &r
	return nil
}

// Installations returns the installations in setup order.
func (s *Store) Installations() []Installation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Installation, 0, len(s.installations))
	for _, id := range s.installations {
		out = append(out, *s.instByID[id])
	}
	return out
}

// ResourceKey looks up the key of a resource by container and code.
func (s *Store) ResourceKey(c ContainerID, code string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.codes[c][code]
	return key, ok
}

// HasContainer reports whether the container is known.
func (s *Store) HasContainer(c ContainerID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.containers[c]
	return ok
}

// Resource returns a copy of the resource with the given key.
func (s *Store) Resource(key string) (Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[key]
	if !ok {
		return Resource{}, false
	}
	return *r, true
}

// State returns the consumer-facing state of a resource, nil when unset or unknown.
func (s *Store) State(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resources[key]
	if !ok {
		return nil
	}
	return r.State()
}

// Apply writes a batch of parsed values keyed by resource key and returns
// the number of resources updated. Unknown keys are ignored.
func (s *Store) Apply(values map[string]any) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, v := range values {
		if r, ok := s.resources[key]; ok {
			r.Value = v
			n++
		}
	}
	return n
}

// Len returns the number of resources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources)
}

// Triples lists populated resources of the given kind: installations, then
// devices, then things with their resources, then slaves with theirs.
func (s *Store) Triples(kind Kind) []Triple {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Triple
	for _, instID := range s.installations {
		for _, devID := range s.instByID[instID].Devices {
			dev := s.devices[devID]
			out = s.appendContainers(out, kind, dev, dev.Things)
			out = s.appendContainers(out, kind, dev, dev.Slaves)
		}
	}
	return out
}

func (s *Store) appendContainers(out []Triple, kind Kind, dev *Device, ids []ContainerID) []Triple {
	for _, cid := range ids {
		c := s.containers[cid]
		for _, key := range c.Resources {
			r := s.resources[key]
			if r.Kind != kind || r.Value == nil {
				continue
			}
			out = append(out, Triple{Device: *dev, Container: *c, Resource: *r})
		}
	}
	return out
}

// Records flattens Triples(kind) into consumer records.
func (s *Store) Records(kind Kind) []Record {
	triples := s.Triples(kind)
	out := make([]Record, 0, len(triples))
	for _, t := range triples {
		out = append(out, NewRecord(s, t))
	}
	return out
}
