package coordinator

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"febos_exporter/internal/entity"
	"febos_exporter/internal/types"
)

// builder assembles the topology of one session.
type builder struct {
	vendor Vendor
	parser *entity.Parser
	store  *entity.Store
	logger *slog.Logger
}

func (b *builder) installation(ctx context.Context, id int64) error {
	b.store.AddInstallation(id)

	cfg, err := b.vendor.PageConfig(ctx, id)
	if err != nil {
		return fmt.Errorf("page config: %w", err)
	}

	for _, raw := range sortedByID(cfg.DeviceMap, func(d types.Device) int64 { return d.ID }) {
		raw.InstallationID = id
		dev := b.parser.ParseDevice(raw)
		if err := b.store.AddDevice(dev); err != nil {
			return err
		}
		if err := b.slaves(ctx, dev); err != nil {
			return err
		}
	}

	for _, raw := range sortedByID(cfg.ThingMap, func(t types.Thing) int64 { return t.ID }) {
		if err := b.store.AddContainer(b.parser.ParseThing(raw, id)); err != nil {
			b.logger.Warn("Skipping thing", "installation", id, "thing", raw.ID, "error", err)
		}
	}

	for _, key := range slices.Sorted(maps.Keys(cfg.PageMap)) {
		for _, tab := range cfg.PageMap[key].TabList {
			for _, widget := range tab.WidgetList {
				for _, group := range widget.WidgetInputGroupList {
					b.group(id, group)
				}
			}
		}
	}
	return nil
}

func (b *builder) slaves(ctx context.Context, dev entity.Device) error {
	slaves, err := b.vendor.Slaves(ctx, dev.ID.Installation, dev.ID.Device)
	if err != nil {
		return fmt.Errorf("slaves of device %d: %w", dev.ID.Device, err)
	}
	for _, raw := range slaves {
		c, resources, ok := b.parser.ParseSlave(raw, dev)
		if !ok {
			continue
		}
		if err := b.store.AddContainer(c); err != nil {
			return err
		}
		for _, r := range resources {
			if err := b.store.AddResource(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// group adds the resources of an input group and subscribes the group when
// at least one of them is exposed.
func (b *builder) group(installation int64, g types.InputGroup) {
	added := 0
	for _, in := range g.InputList {
		if in.DeviceID == 0 {
			in.DeviceID = g.DeviceID
		}
		if in.ThingID == 0 {
			in.ThingID = g.ThingID
		}
		r, ok := b.parser.ParseResource(in, installation, g.InputGroupGetCode)
		if !ok {
			continue
		}
		if _, exists := b.store.Resource(r.Key); exists {
			added++
			continue
		}
		if err := b.store.AddResource(r); err != nil {
			b.logger.Warn("Skipping resource", "key", r.Key, "error", err)
			continue
		}
		added++
	}
	if added == 0 || g.InputGroupGetCode == "" {
		return
	}
	if ok, _ := b.store.AddGroup(installation, g.InputGroupGetCode); ok {
		b.logger.Debug("Subscribed group", "installation", installation, "group", g.InputGroupGetCode)
	}
}

func sortedByID[T any](m map[string]T, id func(T) int64) []T {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}
