// Package mapper normalizes Febos measurement units, resource codes and raw wire values.
package mapper

// Unit is a normalized unit of measurement.
type Unit string

// Units produced by MeasurementUnit.
const (
	UnitKiloWatt     Unit = "kW"
	UnitCelsius      Unit = "°C"
	UnitHours        Unit = "h"
	UnitMinutes      Unit = "min"
	UnitWattHour     Unit = "Wh"
	UnitLitersPerMin Unit = "L/min"
	UnitPercentage   Unit = "%"
)

// SensorClass is the semantic class of a numeric or textual sensor.
type SensorClass string

// Sensor classes.
const (
	SensorClassPower          SensorClass = "power"
	SensorClassTemperature    SensorClass = "temperature"
	SensorClassDuration       SensorClass = "duration"
	SensorClassEnergy         SensorClass = "energy"
	SensorClassVolumeFlowRate SensorClass = "volume_flow_rate"
	SensorClassHumidity       SensorClass = "humidity"
	SensorClassEnum           SensorClass = "enum"
	SensorClassTimestamp      SensorClass = "timestamp"
)

// BinarySensorClass is the semantic class of an on/off sensor.
type BinarySensorClass string

// Binary sensor classes.
const (
	BinaryClassCold     BinarySensorClass = "cold"
	BinaryClassHeat     BinarySensorClass = "heat"
	BinaryClassProblem  BinarySensorClass = "problem"
	BinaryClassRunning  BinarySensorClass = "running"
	BinaryClassWindow   BinarySensorClass = "window"
	BinaryClassPresence BinarySensorClass = "presence"
)

// StateClass tells consumers how successive readings relate to each other.
type StateClass string

// State classes. StateClassNone marks sensors without a state class.
const (
	StateClassNone        StateClass = ""
	StateClassMeasurement StateClass = "measurement"
	StateClassTotal       StateClass = "total"
)

// Vendor measurement unit strings as found in page configs.
const (
	RawUnitKiloWatt   = "kW"
	RawUnitCelsius    = "°C"
	RawUnitDegree     = "°"
	RawUnitHours      = "h"
	RawUnitHoursMins  = "HH:mm"
	RawUnitWattHour   = "watt/h"
	RawUnitLitersHour = "L/h"
	RawUnitPercentage = "%"
	RawUnitBlank      = " "
	RawUnitEmpty      = ""
)

var measurementUnits = map[string]Unit{
	RawUnitKiloWatt:   UnitKiloWatt,
	RawUnitCelsius:    UnitCelsius,
	RawUnitDegree:     UnitCelsius,
	RawUnitHours:      UnitHours,
	RawUnitHoursMins:  UnitMinutes,
	RawUnitWattHour:   UnitWattHour,
	RawUnitLitersHour: UnitLitersPerMin,
	RawUnitPercentage: UnitPercentage,
}

var sensorClasses = map[string]SensorClass{
	RawUnitKiloWatt:   SensorClassPower,
	RawUnitCelsius:    SensorClassTemperature,
	RawUnitDegree:     SensorClassTemperature,
	RawUnitHours:      SensorClassDuration,
	RawUnitHoursMins:  SensorClassDuration,
	RawUnitWattHour:   SensorClassEnergy,
	RawUnitLitersHour: SensorClassVolumeFlowRate,
	RawUnitPercentage: SensorClassHumidity,
	RawUnitBlank:      SensorClassEnum,
	RawUnitEmpty:      SensorClassEnum,
}

var binarySensorClasses = map[string]BinarySensorClass{
	"R8683":  BinaryClassCold,
	"R16385": BinaryClassCold,
	"R9089":  BinaryClassProblem,
	"R9090":  BinaryClassProblem,
	"R9095":  BinaryClassProblem,
	"R9096":  BinaryClassProblem,
	"R9097":  BinaryClassProblem,
	"R9098":  BinaryClassProblem,
	"R9099":  BinaryClassProblem,
	"R9102":  BinaryClassProblem,
	"R9103":  BinaryClassProblem,
	"R9104":  BinaryClassProblem,
	"R16384": BinaryClassRunning,
	"R8681":  BinaryClassRunning,
	"R8682":  BinaryClassRunning,
	"R8692":  BinaryClassRunning,
	"R9072":  BinaryClassRunning,
	"R9073":  BinaryClassRunning,
	"R9074":  BinaryClassRunning,
	"R8672":  BinaryClassWindow,
	"R8673":  BinaryClassPresence,
	"R8676":  BinaryClassPresence,
}

// Codes whose integer encoding is scaled to a physical unit.
var (
	sixtyfoldCodes = codeSet("R9120")

	tenthsCodes = codeSet(
		"R8702", "R8703", "R8678", "R8680", "R8986", "R8987", "R8988",
		"R16444", "R16446", "R16448", "R16450", "R16451", "R16453",
		"R16455", "R16457", "R8989", "R8698", "setTemp", "temp",
	)

	hundredthsCodes = codeSet("R8684", "R8686", "R8688", "R8690")

	thousandthsCodes = codeSet("R8220", "R8221", "R8222", "R8223")
)

func codeSet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}
