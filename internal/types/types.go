// Package types contains shared type definitions used across the febos_exporter packages.
package types

// LoginData is the body returned by a successful Febos login.
type LoginData struct {
	Token              string  `json:"token"`
	InstallationIDList []int64 `json:"installationIdList"`
	UserID             int64   `json:"userId"`
	ExpiresIn          int     `json:"expiresIn"`
}

// PageConfig is the full topology of one installation as served by the webapp.
type PageConfig struct {
	DeviceMap map[string]Device `json:"deviceMap"`
	ThingMap  map[string]Thing  `json:"thingMap"`
	PageMap   map[string]Page   `json:"pageMap"`
}

// Device represents a physical Febos controller.
type Device struct {
	ID             int64  `json:"id"`
	InstallationID int64  `json:"installationId"`
	TenantName     string `json:"tenantName"`
	ModelName      string `json:"modelName"`
	DeviceTypeName string `json:"deviceTypeName"`
}

// Thing is a logical sub-unit of a device.
type Thing struct {
	ID        int64  `json:"id"`
	DeviceID  int64  `json:"deviceId"`
	ModelName string `json:"modelName"`
}

// Page is one webapp page; only the nesting down to inputs is modelled.
type Page struct {
	TabList []Tab `json:"tabList"`
}

// Tab groups widgets on a page.
type Tab struct {
	WidgetList []Widget `json:"widgetList"`
}

// Widget groups the input groups displayed together.
type Widget struct {
	WidgetInputGroupList []InputGroup `json:"widgetInputGroupList"`
}

// InputGroup is a batch of inputs fetched together by realtime requests.
type InputGroup struct {
	InputGroupGetCode string  `json:"inputGroupGetCode"`
	DeviceID          int64   `json:"deviceId"`
	ThingID           int64   `json:"thingId"`
	InputList         []Input `json:"inputList"`
}

// Input describes one resource exposed by a thing.
type Input struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	InputType string `json:"inputType"`
	MeasUnit  string `json:"measUnit"`
	DeviceID  int64  `json:"deviceId"`
	ThingID   int64  `json:"thingId"`
}

// Slave is one entry of the slave register listing. Besides indirizzoSlave
// the fields are register names mapped to raw values.
type Slave map[string]any

// SlaveAddressField is the key holding the bus address of a slave.
const SlaveAddressField = "indirizzoSlave"

// Address returns the bus address of the slave.
func (s Slave) Address() (int64, bool) {
	switch v := s[SlaveAddressField].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

// RealtimeEntry holds the current values for the resources of one thing.
type RealtimeEntry struct {
	DeviceID int64                    `json:"deviceId"`
	ThingID  int64                    `json:"thingId"`
	Data     map[string]RealtimeValue `json:"data"`
}

// RealtimeValue wraps a raw wire value.
type RealtimeValue struct {
	I any `json:"i"`
}
