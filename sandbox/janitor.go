package sandbox

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/common"
	"github.com/milk9111/careenium/ecs"
	"go.uber.org/zap"
)

// Janitor removes entities that leave the world bounds.
type Janitor struct {
	Bounds common.Rect
	log    *zap.Logger
}

// NewJanitor bounds the world to factor viewports in every direction from
// the viewport center.
func NewJanitor(viewport cp.Vector, factor float64, logger *zap.Logger) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	center := viewport.Mult(0.5)
	return &Janitor{
		Bounds: common.RectAround(center, factor*viewport.X, factor*viewport.Y),
		log:    logger.Named("janitor"),
	}
}

// Sweep deletes every non-decorative entity outside Bounds through remove
// and returns the ids it removed.
func (j *Janitor) Sweep(reg *Registry, remove func(ecs.Entity) bool) []ecs.Entity {
	if j == nil || reg == nil || remove == nil {
		return nil
	}
	var out []ecs.Entity
	reg.Each(func(e Entity) {
		if e.Decorative || j.Bounds.Contains(e.Position) {
			return
		}
		out = append(out, e.ID)
	})
	removed := out[:0]
	for _, id := range out {
		if remove(id) {
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		j.log.Debug("swept out of bounds", zap.Int("count", len(removed)))
	}
	return removed
}
