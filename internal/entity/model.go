// Package entity holds the flattened Febos entity model and the parser that builds it.
package entity

import (
	"fmt"
	"strings"

	"febos_exporter/internal/mapper"
)

// Domain is the prefix of every resource key.
const Domain = "febos"

// Kind is the platform a resource is exposed as.
type Kind string

// Resource kinds.
const (
	KindSensor       Kind = "sensor"
	KindBinarySensor Kind = "binary_sensor"
)

// ContainerKind tells things and slaves apart.
type ContainerKind uint8

// Container kinds.
const (
	ContainerThing ContainerKind = iota
	ContainerSlave
)

// DeviceID addresses a device within an installation.
type DeviceID struct {
	Installation int64
	Device       int64
}

// ContainerID addresses a thing or a slave of a device.
type ContainerID struct {
	DeviceID
	Kind ContainerKind
	ID   int64
}

// ThingID returns the identifier of a thing.
func ThingID(installation, device, thing int64) ContainerID {
	return ContainerID{DeviceID: DeviceID{installation, device}, Kind: ContainerThing, ID: thing}
}

// SlaveID returns the identifier of a slave.
func SlaveID(installation, device, address int64) ContainerID {
	return ContainerID{DeviceID: DeviceID{installation, device}, Kind: ContainerSlave, ID: address}
}

// Segment is the container part of keys and identity tuples. Slaves carry an
// "s" marker so a thing and a slave sharing a numeric id never collide.
func (c ContainerID) Segment() string {
	if c.Kind == ContainerSlave {
		return fmt.Sprintf("s%d", c.ID)
	}
	return fmt.Sprint(c.ID)
}

// Key derives the unique key of the resource with the given code.
func (c ContainerID) Key(code string) string {
	return fmt.Sprintf("%s_%d_%d_%s_%s", Domain, c.Installation, c.Device, c.Segment(), strings.ToLower(code))
}

// Installation is a customer site.
type Installation struct {
	ID int64
	// Groups holds the raw group codes requested by realtime fetches,
	// deduplicated by their normalized form.
	Groups  []string
	Devices []DeviceID
}

// Device is a physical controller.
type Device struct {
	ID           DeviceID
	Manufacturer string
	Model        string
	Name         string
	Things       []ContainerID
	Slaves       []ContainerID
}

// Container is a thing or a slave owning resources.
type Container struct {
	ID        ContainerID
	Name      string
	Resources []string
}

// Resource is one telemetry point.
type Resource struct {
	Key         string
	Code        string
	Name        string
	Kind        Kind
	Group       string
	Container   ContainerID
	SensorClass mapper.SensorClass
	BinaryClass mapper.BinarySensorClass
	Unit        mapper.Unit
	StateClass  mapper.StateClass
	// Value is nil until the first successful fetch.
	Value any
}

// DeviceClass returns the class matching the resource kind.
func (r Resource) DeviceClass() string {
	if r.Kind == KindBinarySensor {
		return string(r.BinaryClass)
	}
	return string(r.SensorClass)
}

// State returns the value consumers see: a bool for binary sensors with
// polarity applied, the parsed value otherwise, nil when unset.
func (r Resource) State() any {
	if r.Value == nil {
		return nil
	}
	if r.Kind == KindBinarySensor {
		return *mapper.BinaryValue(r.BinaryClass, r.Value)
	}
	return r.Value
}

// Triple is one (device, container, resource) entry of a listing.
type Triple struct {
	Device    Device
	Container Container
	Resource  Resource
}

// Identity is the device-identity tuple consumers group entities by.
type Identity struct {
	Installation int64  `json:"installation"`
	Device       int64  `json:"device"`
	Container    string `json:"container"`
}

// Record is the flat view of a resource handed to consumers.
type Record struct {
	Key          string            `json:"key"`
	Name         string            `json:"name"`
	Kind         Kind              `json:"kind"`
	Identity     Identity          `json:"identity"`
	Manufacturer string            `json:"manufacturer"`
	Model        string            `json:"model"`
	ParentName   string            `json:"parent_name"`
	DeviceClass  string            `json:"device_class,omitempty"`
	Unit         mapper.Unit       `json:"unit,omitempty"`
	StateClass   mapper.StateClass `json:"state_class,omitempty"`
	Value        Accessor          `json:"-"`
}

// NewRecord flattens a triple; the accessor reads the live value from store.
func NewRecord(store *Store, t Triple) Record {
	r := Record{
		Key:  t.Resource.Key,
		Name: t.Resource.Name,
		Kind: t.Resource.Kind,
		Identity: Identity{
			Installation: t.Container.ID.Installation,
			Device:       t.Container.ID.Device,
			Container:    t.Container.ID.Segment(),
		},
		Manufacturer: t.Device.Manufacturer,
		Model:        t.Device.Model,
		ParentName:   t.Container.Name,
		DeviceClass:  t.Resource.DeviceClass(),
		Value:        Accessor{store: store, key: t.Resource.Key},
	}
	if t.Resource.Kind == KindSensor {
		r.Unit = t.Resource.Unit
		r.StateClass = t.Resource.StateClass
	}
	return r
}

// Accessor reads the current state of one resource.
type Accessor struct {
	store *Store
	key   string
}

// Value returns the current state, see Resource.State.
func (a Accessor) Value() any {
	if a.store == nil {
		return nil
	}
	return a.store.State(a.key)
}
