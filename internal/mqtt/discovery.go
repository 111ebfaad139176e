package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"

	"febos_exporter/internal/entity"
	"febos_exporter/internal/mapper"
)

// Binary sensor state payloads.
const (
	StateOn  = "ON"
	StateOff = "OFF"
)

type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

type discoveryConfig struct {
	Name              string          `json:"name"`
	UniqueID          string          `json:"unique_id"`
	ObjectID          string          `json:"object_id"`
	StateTopic        string          `json:"state_topic"`
	AvailabilityTopic string          `json:"availability_topic"`
	DeviceClass       string          `json:"device_class,omitempty"`
	UnitOfMeasurement string          `json:"unit_of_measurement,omitempty"`
	StateClass        string          `json:"state_class,omitempty"`
	PayloadOn         string          `json:"payload_on,omitempty"`
	PayloadOff        string          `json:"payload_off,omitempty"`
	Device            discoveryDevice `json:"device"`
}

// deviceIdentifier names the container a record belongs to. Records of the
// same thing or slave share one discovery device.
func deviceIdentifier(id entity.Identity) string {
	return fmt.Sprintf("%s_%d_%d_%s", entity.Domain, id.Installation, id.Device, id.Container)
}

func controllerIdentifier(id entity.Identity) string {
	return fmt.Sprintf("%s_%d_%d", entity.Domain, id.Installation, id.Device)
}

// DiscoveryPayload builds the discovery config of a record.
func DiscoveryPayload(t Topics, r entity.Record) ([]byte, error) {
	cfg := discoveryConfig{
		Name:              r.Name,
		UniqueID:          r.Key,
		ObjectID:          r.Key,
		StateTopic:        t.State(r.Key),
		AvailabilityTopic: t.Availability(),
		DeviceClass:       r.DeviceClass,
		Device: discoveryDevice{
			Identifiers:  []string{deviceIdentifier(r.Identity)},
			Name:         r.ParentName,
			Manufacturer: r.Manufacturer,
			Model:        r.Model,
			ViaDevice:    controllerIdentifier(r.Identity),
		},
	}
	switch r.Kind {
	case entity.KindSensor:
		cfg.UnitOfMeasurement = string(r.Unit)
		if numeric(r) {
			cfg.StateClass = string(r.StateClass)
		}
	case entity.KindBinarySensor:
		cfg.PayloadOn = StateOn
		cfg.PayloadOff = StateOff
	}
	return json.Marshal(cfg)
}

// numeric reports whether a sensor carries numeric states. Enum and text
// states must not advertise a state class.
func numeric(r entity.Record) bool {
	if r.DeviceClass == string(mapper.SensorClassEnum) {
		return false
	}
	_, text := r.Value.Value().(string)
	return !text
}

// StatePayload renders the current state of a record. It returns false when
// the record has no value.
func StatePayload(r entity.Record) (string, bool) {
	switch v := r.Value.Value().(type) {
	case nil:
		return "", false
	case bool:
		if v {
			return StateOn, true
		}
		return StateOff, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}
