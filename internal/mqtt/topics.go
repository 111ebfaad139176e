package mqtt

import "febos_exporter/internal/entity"

// Component is the discovery node id shared by every entity.
const Component = entity.Domain

// Payloads of the availability topic.
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Topics builds topic names from the configured prefixes.
type Topics struct {
	DiscoveryPrefix string
	TopicPrefix     string
}

// Discovery is the retained discovery config topic of an entity.
func (t Topics) Discovery(kind entity.Kind, key string) string {
	return t.DiscoveryPrefix + "/" + string(kind) + "/" + Component + "/" + key + "/config"
}

// State is the state topic of an entity.
func (t Topics) State(key string) string {
	return t.TopicPrefix + "/" + key + "/state"
}

// Availability is the exporter status topic, also used as last will.
func (t Topics) Availability() string {
	return t.TopicPrefix + "/status"
}
