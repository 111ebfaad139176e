package entity

import "febos_exporter/internal/mapper"

// slaveResource describes one entry of the fixed slave register schema.
type slaveResource struct {
	Name        string
	Kind        Kind
	SensorClass mapper.SensorClass
	BinaryClass mapper.BinarySensorClass
	StateClass  mapper.StateClass
	Unit        mapper.Unit
}

// slaveResources is the whitelist of slave register fields. Any other field
// of a slave listing is ignored.
var slaveResources = map[string]slaveResource{
	"callTemp": {
		Name:        "Chiamata Temperatura",
		Kind:        KindBinarySensor,
		BinaryClass: mapper.BinaryClassHeat,
	},
	"callHumid": {
		Name:        "Chiamata Umidità",
		Kind:        KindBinarySensor,
		BinaryClass: mapper.BinaryClassHeat,
	},
	"stagione": {
		Name:        "Stagione",
		Kind:        KindBinarySensor,
		BinaryClass: mapper.BinaryClassCold,
	},
	"setTemp": {
		Name:        "Set Temperatura",
		Kind:        KindSensor,
		SensorClass: mapper.SensorClassTemperature,
		StateClass:  mapper.StateClassMeasurement,
		Unit:        mapper.UnitCelsius,
	},
	"temp": {
		Name:        "Temperatura",
		Kind:        KindSensor,
		SensorClass: mapper.SensorClassTemperature,
		StateClass:  mapper.StateClassMeasurement,
		Unit:        mapper.UnitCelsius,
	},
	"humid": {
		Name:        "Umidità",
		Kind:        KindSensor,
		SensorClass: mapper.SensorClassHumidity,
		StateClass:  mapper.StateClassMeasurement,
		Unit:        mapper.UnitPercentage,
	},
	"confort": {
		Name:        "Comfort",
		Kind:        KindBinarySensor,
		BinaryClass: mapper.BinaryClassPresence,
	},
}

// slaveFieldOrder fixes the order slave resources are listed in.
var slaveFieldOrder = []string{"callTemp", "callHumid", "stagione", "setTemp", "temp", "humid", "confort"}

// IsSlaveField reports whether a slave listing field maps to a resource.
func IsSlaveField(field string) bool {
	_, ok := slaveResources[field]
	return ok
}
