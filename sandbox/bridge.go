package sandbox

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/ecs"
	"go.uber.org/zap"
)

// BridgeResult lists what one Build call created.
type BridgeResult struct {
	Planks []ecs.Entity
	Joints []JointID
}

// BridgeBuilder spans two entities with a chain of pinned planks.
type BridgeBuilder struct {
	reg    *Registry
	joints *JointManager
	Grid   float64
	Margin float64
	log    *zap.Logger
}

func NewBridgeBuilder(reg *Registry, joints *JointManager, grid, margin float64, logger *zap.Logger) *BridgeBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BridgeBuilder{reg: reg, joints: joints, Grid: grid, Margin: margin, log: logger.Named("bridge")}
}

// LinkCount is the number of intervals a bridge of length dist uses.
func (b *BridgeBuilder) LinkCount(dist float64) int {
	if b.Grid <= 0 {
		return 1
	}
	return int(math.Floor(dist/(2*b.Grid))) + 1
}

// Build creates linkCount-1 planks on the interior division points of the
// segment between a and b and pins them end to end, the first plank to a
// and the last to b. Nothing is left behind when it fails.
func (b *BridgeBuilder) Build(a, z ecs.Entity) (BridgeResult, error) {
	if a == z {
		return BridgeResult{}, fmt.Errorf("bridge %v to itself: %w", a, ErrInvalidGesture)
	}
	ea, ok := b.reg.Lookup(a)
	if !ok {
		return BridgeResult{}, fmt.Errorf("bridge anchor %v: %w: %w", a, ErrInvalidGesture, ErrDanglingReference)
	}
	ez, ok := b.reg.Lookup(z)
	if !ok {
		return BridgeResult{}, fmt.Errorf("bridge anchor %v: %w: %w", z, ErrInvalidGesture, ErrDanglingReference)
	}

	pa, pz := ea.Position, ez.Position
	d := pz.Sub(pa)
	dist := d.Length()
	if dist == 0 {
		return BridgeResult{}, fmt.Errorf("bridge of zero length: %w", ErrInvalidGesture)
	}

	n := b.LinkCount(dist)
	step := d.Mult(1 / float64(n))
	half := dist / float64(n) / 2
	angle := math.Atan2(d.Y, d.X)
	offset := math.Max(half-b.Margin, 0)

	var res BridgeResult
	fail := func(err error) (BridgeResult, error) {
		for _, id := range res.Joints {
			b.joints.Remove(id)
		}
		for _, id := range res.Planks {
			b.joints.DeleteForEntity(id)
		}
		b.log.Debug("bridge rolled back", zap.Int("planks", len(res.Planks)), zap.Error(err))
		return BridgeResult{}, err
	}

	for i := 1; i < n; i++ {
		center := pa.Add(step.Mult(float64(i)))
		id, err := b.reg.Create(KindPlank, center, cp.Vector{}, Params{Angle: angle, Length: 2 * half})
		if err != nil {
			return fail(err)
		}
		res.Planks = append(res.Planks, id)
	}

	prev, prevLocal := a, cp.Vector{}
	for _, plank := range res.Planks {
		jid, err := b.joints.connectBridgeLink(prev, prevLocal, plank, cp.Vector{X: -offset})
		if err != nil {
			return fail(err)
		}
		res.Joints = append(res.Joints, jid)
		prev, prevLocal = plank, cp.Vector{X: offset}
	}
	jid, err := b.joints.connectBridgeLink(prev, prevLocal, z, cp.Vector{})
	if err != nil {
		return fail(err)
	}
	res.Joints = append(res.Joints, jid)

	b.log.Debug("bridge built", zap.Stringer("a", a), zap.Stringer("b", z),
		zap.Int("planks", len(res.Planks)), zap.Int("joints", len(res.Joints)))
	return res, nil
}
