package mapper

import (
	"encoding/json"
	"math"
	"testing"
)

func TestMeasurementUnitAndClass(t *testing.T) {
	tests := []struct {
		raw     string
		unit    Unit
		unitOK  bool
		class   SensorClass
		classOK bool
	}{
		{"kW", UnitKiloWatt, true, SensorClassPower, true},
		{"°C", UnitCelsius, true, SensorClassTemperature, true},
		{"°", UnitCelsius, true, SensorClassTemperature, true},
		{"h", UnitHours, true, SensorClassDuration, true},
		{"HH:mm", UnitMinutes, true, SensorClassDuration, true},
		{"watt/h", UnitWattHour, true, SensorClassEnergy, true},
		{"L/h", UnitLitersPerMin, true, SensorClassVolumeFlowRate, true},
		{"%", UnitPercentage, true, SensorClassHumidity, true},
		{" ", "", false, SensorClassEnum, true},
		{"", "", false, SensorClassEnum, true},
		{"bar", "", false, "", false},
		{"KW", "", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			unit, ok := MeasurementUnit(tt.raw)
			if unit != tt.unit || ok != tt.unitOK {
				t.Errorf("MeasurementUnit(%q) = %q, %v, want %q, %v", tt.raw, unit, ok, tt.unit, tt.unitOK)
			}
			class, ok := SensorDeviceClass(tt.raw)
			if class != tt.class || ok != tt.classOK {
				t.Errorf("SensorDeviceClass(%q) = %q, %v, want %q, %v", tt.raw, class, ok, tt.class, tt.classOK)
			}
		})
	}
}

func TestStateClassFor(t *testing.T) {
	tests := []struct {
		class SensorClass
		want  StateClass
	}{
		{SensorClassEnergy, StateClassTotal},
		{SensorClassTimestamp, StateClassNone},
		{SensorClassTemperature, StateClassMeasurement},
		{SensorClassHumidity, StateClassMeasurement},
		{"", StateClassMeasurement},
	}

	for _, tt := range tests {
		if got := StateClassFor(tt.class); got != tt.want {
			t.Errorf("StateClassFor(%q) = %q, want %q", tt.class, got, tt.want)
		}
	}
}

func TestBinarySensorDeviceClass(t *testing.T) {
	if c, ok := BinarySensorDeviceClass(nil, "R8683"); !ok || c != BinaryClassCold {
		t.Errorf("R8683 = %q, %v, want cold", c, ok)
	}
	if c, ok := BinarySensorDeviceClass(nil, "R8676"); !ok || c != BinaryClassPresence {
		t.Errorf("R8676 = %q, %v, want presence", c, ok)
	}
	if c, ok := BinarySensorDeviceClass(nil, "R9104"); !ok || c != BinaryClassProblem {
		t.Errorf("R9104 = %q, %v, want problem", c, ok)
	}
	if c, ok := BinarySensorDeviceClass(nil, "R1"); ok || c != "" {
		t.Errorf("R1 = %q, %v, want untyped", c, ok)
	}
	if len(binarySensorClasses) != 22 {
		t.Errorf("binary class table has %d codes, want 22", len(binarySensorClasses))
	}
}

func TestParseValue_Scaled(t *testing.T) {
	check := func(codes map[string]struct{}, raw float64, want func(float64) float64) {
		t.Helper()
		for code := range codes {
			got, ok := ParseValue(raw, code).(float64)
			if !ok {
				t.Errorf("ParseValue(%v, %q) is not float64", raw, code)
				continue
			}
			if math.Abs(got-want(raw)) > 1e-9 {
				t.Errorf("ParseValue(%v, %q) = %v, want %v", raw, code, got, want(raw))
			}
		}
	}

	check(sixtyfoldCodes, 3, func(f float64) float64 { return f * 60 })
	check(tenthsCodes, 215, func(f float64) float64 { return f / 10 })
	check(hundredthsCodes, 550, func(f float64) float64 { return f / 100 })
	check(thousandthsCodes, 12345, func(f float64) float64 { return f / 1000 })

	if len(tenthsCodes) != 19 {
		t.Errorf("tenths table has %d codes, want 19", len(tenthsCodes))
	}
}

func TestParseValue_Passthrough(t *testing.T) {
	if got := ParseValue(42.0, "R1234"); got != 42.0 {
		t.Errorf("ParseValue(42, R1234) = %v, want 42", got)
	}
	if got := ParseValue(7, "R8684"); got != 0.07 {
		t.Errorf("ParseValue(int 7, R8684) = %v, want 0.07", got)
	}
	if got := ParseValue("  ON \n", "R8684"); got != "ON" {
		t.Errorf("ParseValue(string) = %q, want ON", got)
	}
	if got := ParseValue(json.Number("215"), "temp"); got != 21.5 {
		t.Errorf("ParseValue(json.Number) = %v, want 21.5", got)
	}
	if got := ParseValue(nil, "temp"); got != nil {
		t.Errorf("ParseValue(nil) = %v, want nil", got)
	}
}

func TestBinaryValue(t *testing.T) {
	tests := []struct {
		name  string
		class BinarySensorClass
		value any
		want  *bool
	}{
		{"unset", BinaryClassCold, nil, nil},
		{"cold on", BinaryClassCold, 1.0, ptrBool(false)},
		{"cold off", BinaryClassCold, 0.0, ptrBool(true)},
		{"presence on", BinaryClassPresence, true, ptrBool(false)},
		{"running on", BinaryClassRunning, 1.0, ptrBool(true)},
		{"problem off", BinaryClassProblem, 0.0, ptrBool(false)},
		{"untyped on", "", 1, ptrBool(true)},
		{"heat string", BinaryClassHeat, "1", ptrBool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BinaryValue(tt.class, tt.value)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("BinaryValue = %v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("BinaryValue = nil, want %v", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("BinaryValue = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestScenario_HumidityPercent(t *testing.T) {
	unit, _ := MeasurementUnit("%")
	class, _ := SensorDeviceClass("%")
	value := ParseValue(550.0, "R8684")

	if value != 5.5 {
		t.Errorf("value = %v, want 5.5", value)
	}
	if class != SensorClassHumidity {
		t.Errorf("class = %q, want humidity", class)
	}
	if unit != UnitPercentage {
		t.Errorf("unit = %q, want %%", unit)
	}
	if StateClassFor(class) != StateClassMeasurement {
		t.Errorf("state class = %q, want measurement", StateClassFor(class))
	}
}

func TestSafe(t *testing.T) {
	tests := []struct {
		value    string
		fallback string
		want     string
	}{
		{"value", "fallback", "value"},
		{"  value  ", "fallback", "value"},
		{"", "fallback", "fallback"},
		{"  ", "fallback", "fallback"},
	}

	for _, tt := range tests {
		got := Safe(tt.value, tt.fallback)
		if got != tt.want {
			t.Errorf("Safe(%q, %q) = %q, want %q", tt.value, tt.fallback, got, tt.want)
		}
	}
}

func ptrBool(b bool) *bool {
	return &b
}
