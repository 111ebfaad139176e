package entity

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"febos_exporter/internal/mapper"
	"febos_exporter/internal/types"
)

// Input types accepted from page configs.
const (
	InputBool   = "BOOL"
	InputInt    = "INT"
	InputFloat  = "FLOAT"
	InputString = "STRING"
)

// UnknownName is used for resources without a label.
const UnknownName = "Unknown"

// kwSuffix is the annotation the webapp appends to some labels.
const kwSuffix = " (in KW)"

// Parser turns raw Febos payload fragments into entities. It keeps no state
// besides the logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser logging to logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseDevice converts a raw device.
func (p *Parser) ParseDevice(raw types.Device) Device {
	dev := Device{
		ID:           DeviceID{Installation: raw.InstallationID, Device: raw.ID},
		Manufacturer: raw.TenantName,
		Model:        raw.ModelName,
		Name:         fmt.Sprintf("%s %s %s", raw.TenantName, raw.ModelName, capitalize(raw.DeviceTypeName)),
	}
	p.logger.Debug("Parsed device", "installation", raw.InstallationID, "device", raw.ID, "name", dev.Name)
	return dev
}

// ParseThing converts a raw thing of the given installation. Its resources
// are added later from the page config.
func (p *Parser) ParseThing(raw types.Thing, installation int64) Container {
	c := Container{
		ID:   ThingID(installation, raw.DeviceID, raw.ID),
		Name: mapper.Safe(raw.ModelName, fmt.Sprintf("Thing %d", raw.ID)),
	}
	p.logger.Debug("Parsed thing", "device", raw.DeviceID, "thing", raw.ID, "name", c.Name)
	return c
}

// ParseSlave converts one slave listing entry into a container and the
// resources of the fixed slave schema it carries, values unset. It returns
// false when the entry has no bus address.
func (p *Parser) ParseSlave(raw types.Slave, dev Device) (Container, []Resource, bool) {
	addr, ok := raw.Address()
	if !ok {
		p.logger.Warn("Slave without address", "device", dev.ID.Device)
		return Container{}, nil, false
	}

	c := Container{
		ID:   SlaveID(dev.ID.Installation, dev.ID.Device, addr),
		Name: fmt.Sprintf("%s Slave %d", dev.Model, addr),
	}

	var resources []Resource
	for _, field := range slaveFieldOrder {
		if _, present := raw[field]; !present {
			continue
		}
		def := slaveResources[field]
		r := Resource{
			Key:         c.ID.Key(field),
			Code:        field,
			Name:        def.Name,
			Kind:        def.Kind,
			Container:   c.ID,
			SensorClass: def.SensorClass,
			BinaryClass: def.BinaryClass,
			Unit:        def.Unit,
			StateClass:  def.StateClass,
		}
		p.logger.Debug("Parsed slave resource", "key", r.Key, "kind", r.Kind)
		resources = append(resources, r)
	}
	return c, resources, true
}

// ParseResource converts an input of a page config. The input's own device
// and thing ids locate its container. It returns false for input types
// that cannot be exposed; callers skip those.
func (p *Parser) ParseResource(raw types.Input, installation int64, groupCode string) (Resource, bool) {
	container := ThingID(installation, raw.DeviceID, raw.ThingID)
	r := Resource{
		Key:       container.Key(raw.Code),
		Code:      raw.Code,
		Name:      ParseSensorName(raw.Label),
		Group:     ParseGroupCode(groupCode),
		Container: container,
	}

	switch raw.InputType {
	case InputBool:
		r.Kind = KindBinarySensor
		r.BinaryClass, _ = mapper.BinarySensorDeviceClass(p.logger, raw.Code)
	case InputInt, InputFloat, InputString:
		r.Kind = KindSensor
		r.Unit, _ = mapper.MeasurementUnit(raw.MeasUnit)
		r.SensorClass, _ = mapper.SensorDeviceClass(raw.MeasUnit)
		r.StateClass = mapper.StateClassFor(r.SensorClass)
	default:
		p.logger.Error("Unsupported input type", "input_type", raw.InputType, "key", r.Key)
		return Resource{}, false
	}

	p.logger.Debug("Parsed resource", "key", r.Key, "kind", r.Kind, "class", r.DeviceClass())
	return r, true
}

// ParseGroupCode normalizes a group code: the "@" qualifier is dropped, the
// rest lowercased with hyphens turned into underscores.
func ParseGroupCode(code string) string {
	code, _, _ = strings.Cut(code, "@")
	return strings.ReplaceAll(strings.ToLower(code), "-", "_")
}

// ParseSensorName strips the kW annotation and defaults empty names.
func ParseSensorName(name string) string {
	name = strings.ReplaceAll(name, kwSuffix, "")
	if name == "" {
		return UnknownName
	}
	return name
}

// ResourceKey is the key of a thing resource.
func ResourceKey(installation, device, thing int64, code string) string {
	return ThingID(installation, device, thing).Key(code)
}

// SlaveResourceKey is the key of a slave resource.
func SlaveResourceKey(installation, device, address int64, code string) string {
	return SlaveID(installation, device, address).Key(code)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
