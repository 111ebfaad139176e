package coordinator

import (
	"context"
	"fmt"

	"febos_exporter/internal/entity"
	"febos_exporter/internal/mapper"
)

// fetch runs one refresh pass and returns the staged values by key. Nothing
// is written to store.
func (c *Coordinator) fetch(ctx context.Context, store *entity.Store) (map[string]any, error) {
	values := make(map[string]any)
	for _, inst := range store.Installations() {
		entries, err := c.vendor.RealtimeData(ctx, inst.ID, inst.Groups)
		if err != nil {
			return nil, fmt.Errorf("realtime data of installation %d: %w", inst.ID, err)
		}
		for _, e := range entries {
			container := entity.ThingID(inst.ID, e.DeviceID, e.ThingID)
			for code, raw := range e.Data {
				c.stage(values, store, container, code, raw.I)
			}
		}

		for _, dev := range inst.Devices {
			slaves, err := c.vendor.Slaves(ctx, inst.ID, dev.Device)
			if err != nil {
				return nil, fmt.Errorf("slaves of device %d: %w", dev.Device, err)
			}
			for _, s := range slaves {
				addr, ok := s.Address()
				if !ok {
					continue
				}
				container := entity.SlaveID(inst.ID, dev.Device, addr)
				for field, raw := range s {
					if entity.IsSlaveField(field) {
						c.stage(values, store, container, field, raw)
					}
				}
			}
		}
	}
	return values, nil
}

func (c *Coordinator) stage(values map[string]any, store *entity.Store, container entity.ContainerID, code string, raw any) {
	key, ok := store.ResourceKey(container, code)
	if !ok {
		c.logger.Debug("Skipping unknown value", "container", container.Key(code))
		return
	}
	if v := mapper.ParseValue(raw, code); v != nil {
		values[key] = v
	}
}
