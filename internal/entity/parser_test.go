package entity

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"febos_exporter/internal/mapper"
	"febos_exporter/internal/types"
)

func testParser() *Parser {
	return NewParser(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseDevice(t *testing.T) {
	dev := testParser().ParseDevice(types.Device{
		ID:             10,
		InstallationID: 1,
		TenantName:     "EmmeTI",
		ModelName:      "X1",
		DeviceTypeName: "CONTROLLER",
	})

	want := Device{
		ID:           DeviceID{Installation: 1, Device: 10},
		Manufacturer: "EmmeTI",
		Model:        "X1",
		Name:         "EmmeTI X1 Controller",
	}
	if diff := cmp.Diff(want, dev); diff != "" {
		t.Errorf("ParseDevice() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseThing(t *testing.T) {
	p := testParser()

	c := p.ParseThing(types.Thing{ID: 100, DeviceID: 10, ModelName: "Zona Giorno"}, 1)
	if c.ID != ThingID(1, 10, 100) {
		t.Errorf("ID = %+v, want thing 1/10/100", c.ID)
	}
	if c.Name != "Zona Giorno" {
		t.Errorf("Name = %q, want Zona Giorno", c.Name)
	}
	if len(c.Resources) != 0 {
		t.Errorf("Resources = %v, want none", c.Resources)
	}

	c = p.ParseThing(types.Thing{ID: 7, DeviceID: 10}, 1)
	if c.Name != "Thing 7" {
		t.Errorf("Name = %q, want Thing 7", c.Name)
	}
}

func TestParseSlave(t *testing.T) {
	dev := Device{ID: DeviceID{Installation: 1, Device: 10}, Model: "X1"}
	raw := types.Slave{
		"indirizzoSlave": 3.0,
		"stagione":       1.0,
		"temp":           215.0,
		"unknownField":   5.0,
	}

	c, resources, ok := testParser().ParseSlave(raw, dev)
	if !ok {
		t.Fatal("ParseSlave() returned !ok")
	}
	if c.ID != SlaveID(1, 10, 3) {
		t.Errorf("ID = %+v, want slave 1/10/3", c.ID)
	}
	if c.Name != "X1 Slave 3" {
		t.Errorf("Name = %q, want X1 Slave 3", c.Name)
	}

	if len(resources) != 2 {
		t.Fatalf("resources = %d, want 2 (unknown fields ignored)", len(resources))
	}
	stagione := resources[0]
	if stagione.Code != "stagione" || stagione.Kind != KindBinarySensor || stagione.BinaryClass != mapper.BinaryClassCold {
		t.Errorf("stagione = %+v", stagione)
	}
	if stagione.Value != nil {
		t.Errorf("stagione value = %v, want unset", stagione.Value)
	}
	if stagione.Key != "febos_1_10_s3_stagione" {
		t.Errorf("stagione key = %q", stagione.Key)
	}
	temp := resources[1]
	if temp.Kind != KindSensor || temp.Unit != mapper.UnitCelsius || temp.StateClass != mapper.StateClassMeasurement {
		t.Errorf("temp = %+v", temp)
	}
}

func TestSlaveFieldOrder(t *testing.T) {
	if len(slaveFieldOrder) != len(slaveResources) {
		t.Fatalf("order lists %d fields, schema has %d", len(slaveFieldOrder), len(slaveResources))
	}
	seen := make(map[string]bool)
	for _, field := range slaveFieldOrder {
		if !IsSlaveField(field) {
			t.Errorf("ordered field %q missing from schema", field)
		}
		if seen[field] {
			t.Errorf("field %q listed twice", field)
		}
		seen[field] = true
	}
}

func TestParseSlave_NoAddress(t *testing.T) {
	_, _, ok := testParser().ParseSlave(types.Slave{"temp": 1.0}, Device{})
	if ok {
		t.Error("ParseSlave() without address should return !ok")
	}
}

func TestParseResource_Sensor(t *testing.T) {
	r, ok := testParser().ParseResource(types.Input{
		Code:      "R8684",
		Label:     "Umidità relativa",
		InputType: InputFloat,
		MeasUnit:  "%",
		DeviceID:  10,
		ThingID:   100,
	}, 1, "GRP-Realtime@1")
	if !ok {
		t.Fatal("ParseResource() returned !ok")
	}

	want := Resource{
		Key:         "febos_1_10_100_r8684",
		Code:        "R8684",
		Name:        "Umidità relativa",
		Kind:        KindSensor,
		Group:       "grp_realtime",
		Container:   ThingID(1, 10, 100),
		SensorClass: mapper.SensorClassHumidity,
		Unit:        mapper.UnitPercentage,
		StateClass:  mapper.StateClassMeasurement,
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("ParseResource() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResource_Binary(t *testing.T) {
	r, ok := testParser().ParseResource(types.Input{
		Code:      "R8673",
		InputType: InputBool,
		DeviceID:  10,
		ThingID:   100,
	}, 1, "g")
	if !ok {
		t.Fatal("ParseResource() returned !ok")
	}
	if r.Kind != KindBinarySensor || r.BinaryClass != mapper.BinaryClassPresence {
		t.Errorf("resource = %+v, want presence binary sensor", r)
	}
	if r.Name != UnknownName {
		t.Errorf("Name = %q, want %q", r.Name, UnknownName)
	}
	if r.Unit != "" || r.StateClass != "" {
		t.Errorf("binary sensor has unit %q / state class %q", r.Unit, r.StateClass)
	}
}

func TestParseResource_UnknownUnit(t *testing.T) {
	r, ok := testParser().ParseResource(types.Input{Code: "R1", InputType: InputInt, MeasUnit: "bar"}, 1, "g")
	if !ok {
		t.Fatal("ParseResource() returned !ok")
	}
	if r.Unit != "" || r.SensorClass != "" {
		t.Errorf("unknown unit produced unit %q class %q", r.Unit, r.SensorClass)
	}
}

func TestParseResource_Unsupported(t *testing.T) {
	_, ok := testParser().ParseResource(types.Input{Code: "R1", InputType: "ENUM_UNSUPPORTED"}, 1, "g")
	if ok {
		t.Error("ParseResource() should skip unsupported input types")
	}
}

func TestParseGroupCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GRP-A@123", "grp_a"},
		{"grp_b", "grp_b"},
		{"Mixed-Case-Code", "mixed_case_code"},
		{"@only", ""},
	}
	for _, tt := range tests {
		if got := ParseGroupCode(tt.in); got != tt.want {
			t.Errorf("ParseGroupCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSensorName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Potenza (in KW)", "Potenza"},
		{"Temperatura", "Temperatura"},
		{"", UnknownName},
		{" (in KW)", UnknownName},
	}
	for _, tt := range tests {
		if got := ParseSensorName(tt.in); got != tt.want {
			t.Errorf("ParseSensorName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResourceKey_Deterministic(t *testing.T) {
	base := ResourceKey(1, 10, 100, "R8684")
	if base != ResourceKey(1, 10, 100, "R8684") {
		t.Fatal("ResourceKey is not deterministic")
	}

	variants := []string{
		ResourceKey(2, 10, 100, "R8684"),
		ResourceKey(1, 11, 100, "R8684"),
		ResourceKey(1, 10, 101, "R8684"),
		ResourceKey(1, 10, 100, "R8685"),
		SlaveResourceKey(1, 10, 100, "R8684"),
	}
	seen := map[string]bool{base: true}
	for _, v := range variants {
		if seen[v] {
			t.Errorf("key %q collides", v)
		}
		seen[v] = true
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"controller": "Controller",
		"HEAT PUMP":  "Heat pump",
		"ù":          "Ù",
	}
	for in, want := range tests {
		if got := capitalize(in); got != want {
			t.Errorf("capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}
