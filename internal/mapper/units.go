package mapper

import "log/slog"

// MeasurementUnit maps a vendor unit string to a normalized unit.
func MeasurementUnit(raw string) (Unit, bool) {
	u, ok := measurementUnits[raw]
	return u, ok
}

// SensorDeviceClass maps a vendor unit string to a sensor class.
func SensorDeviceClass(raw string) (SensorClass, bool) {
	c, ok := sensorClasses[raw]
	return c, ok
}

// StateClassFor returns the state class matching a sensor class.
// Energy accumulates, timestamps have none, everything else is a measurement.
func StateClassFor(class SensorClass) StateClass {
	switch class {
	case SensorClassEnergy:
		return StateClassTotal
	case SensorClassTimestamp:
		return StateClassNone
	default:
		return StateClassMeasurement
	}
}

// BinarySensorDeviceClass maps a resource code to a binary sensor class.
// Unknown codes are logged and reported as untyped.
func BinarySensorDeviceClass(logger *slog.Logger, code string) (BinarySensorClass, bool) {
	c, ok := binarySensorClasses[code]
	if !ok && logger != nil {
		logger.Warn("Unsupported binary sensor class", "code", code)
	}
	return c, ok
}
