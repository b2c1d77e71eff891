// Package scene populates a sandbox world from tengo scripts.
//
// A script sees one immutable map, world, whose functions create entities
// and joints and return their ids:
//
//	a := world.static(0, 0)
//	b := world.static(240, 0)
//	world.bridge(a, b)
//	world.pipe(320, 96, {vx: 120, vy: 0, emit: "circle"})
//
// Gestures the world rejects come back as tengo error values; engine
// allocation failures abort the script.
package scene

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/careenium/ecs"
	"github.com/milk9111/careenium/prefabs"
	"github.com/milk9111/careenium/sandbox"
	"go.uber.org/zap"
)

// Result counts what a scene created.
type Result struct {
	Name     string
	Entities int
	Joints   int
	Rejected int
	// Follow is the entity named by the script's follow global, if any.
	Follow ecs.Entity
}

// PipeOptions is the option map accepted by world.pipe.
type PipeOptions struct {
	VX   float64 `yaml:"vx"`
	VY   float64 `yaml:"vy"`
	Emit string  `yaml:"emit"`
}

// Load reads the named scene from src and runs it against w.
func Load(ctx context.Context, w *sandbox.World, src prefabs.Source, name string, logger *zap.Logger) (Result, error) {
	body, err := src.LoadScene(name)
	if err != nil {
		return Result{}, err
	}
	return Run(ctx, w, name, body, logger)
}

// Run compiles and runs one scene script.
func Run(ctx context.Context, w *sandbox.World, name string, src []byte, logger *zap.Logger) (Result, error) {
	if w == nil {
		return Result{}, fmt.Errorf("scene %s: nil world", name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &builder{w: w, log: logger.Named("scene").With(zap.String("scene", name)), res: Result{Name: name}}

	script := tengo.NewScript(src)
	if err := script.Add("world", b.module()); err != nil {
		return Result{}, fmt.Errorf("scene %s: %w", name, err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return Result{}, fmt.Errorf("compile scene %s: %w", name, err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		if b.fatal != nil {
			return b.res, fmt.Errorf("run scene %s: %w", name, b.fatal)
		}
		return b.res, fmt.Errorf("run scene %s: %w", name, err)
	}

	if compiled.IsDefined("follow") {
		if id, ok := tengo.ToInt64(compiled.Get("follow").Object()); ok && id > 0 {
			b.res.Follow = ecs.Entity(id)
		}
	}
	b.log.Info("scene loaded",
		zap.Int("entities", b.res.Entities),
		zap.Int("joints", b.res.Joints),
		zap.Int("rejected", b.res.Rejected))
	return b.res, nil
}

type builder struct {
	w     *sandbox.World
	log   *zap.Logger
	res   Result
	fatal error
}

func (b *builder) module() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}
	for _, kind := range []sandbox.Kind{sandbox.KindCircle, sandbox.KindBox, sandbox.KindPlank, sandbox.KindStatic} {
		values[kind.String()] = b.spawnFunc(kind)
	}
	values["pipe"] = &tengo.UserFunction{Name: "pipe", Value: b.pipe}
	values["line"] = &tengo.UserFunction{Name: "line", Value: b.line}
	values["pin"] = &tengo.UserFunction{Name: "pin", Value: b.pin}
	values["slide"] = &tengo.UserFunction{Name: "slide", Value: b.slide}
	values["motor"] = &tengo.UserFunction{Name: "motor", Value: b.motor}
	values["pivot"] = &tengo.UserFunction{Name: "pivot", Value: b.pivot}
	values["bridge"] = &tengo.UserFunction{Name: "bridge", Value: b.bridge}
	values["mode"] = &tengo.UserFunction{Name: "mode", Value: b.mode}
	values["delete"] = &tengo.UserFunction{Name: "delete", Value: b.remove}
	values["position"] = &tengo.UserFunction{Name: "position", Value: b.position}
	return &tengo.ImmutableMap{Value: values}
}

// spawnFunc builds world.<kind>(x, y[, vx, vy]).
func (b *builder) spawnFunc(kind sandbox.Kind) *tengo.UserFunction {
	name := kind.String()
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 && len(args) != 4 {
			return nil, tengo.ErrWrongNumArguments
		}
		nums, err := floats(name, args...)
		if err != nil {
			return nil, err
		}
		var vel cp.Vector
		if len(nums) == 4 {
			vel = cp.Vector{X: nums[2], Y: nums[3]}
		}
		id, err := b.w.Spawn(kind, cp.Vector{X: nums[0], Y: nums[1]}, vel, sandbox.Params{})
		return b.entity(name, id, err)
	}}
}

func (b *builder) pipe(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, tengo.ErrWrongNumArguments
	}
	nums, err := floats("pipe", args[:2]...)
	if err != nil {
		return nil, err
	}
	var opts PipeOptions
	if len(args) == 3 {
		if opts, err = prefabs.DecodeSpec[PipeOptions](tengo.ToInterface(args[2])); err != nil {
			return nil, fmt.Errorf("pipe options: %w", err)
		}
	}
	params := sandbox.Params{Emit: cp.Vector{X: opts.VX, Y: opts.VY}}
	if opts.Emit != "" {
		if params.Target, err = sandbox.ParseKind(opts.Emit); err != nil {
			return b.reject("pipe", err), nil
		}
	}
	id, err := b.w.Spawn(sandbox.KindPipe, cp.Vector{X: nums[0], Y: nums[1]}, cp.Vector{}, params)
	return b.entity("pipe", id, err)
}

func (b *builder) line(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 4 {
		return nil, tengo.ErrWrongNumArguments
	}
	nums, err := floats("line", args...)
	if err != nil {
		return nil, err
	}
	id, err := b.w.Registry().CreateLink(cp.Vector{X: nums[0], Y: nums[1]}, cp.Vector{X: nums[2], Y: nums[3]}, false)
	return b.entity("line", id, err)
}

func (b *builder) pin(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	ids, err := entities("pin", args...)
	if err != nil {
		return nil, err
	}
	id, err := b.w.Joints().ConnectPin(ids[0], cp.Vector{}, ids[1], cp.Vector{})
	return b.joint("pin", id, err)
}

func (b *builder) slide(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 4 {
		return nil, tengo.ErrWrongNumArguments
	}
	ids, err := entities("slide", args[:2]...)
	if err != nil {
		return nil, err
	}
	limits, err := floats("slide", args[2:]...)
	if err != nil {
		return nil, err
	}
	id, err := b.w.Joints().ConnectSlide(ids[0], cp.Vector{}, ids[1], cp.Vector{}, limits[0], limits[1])
	return b.joint("slide", id, err)
}

func (b *builder) motor(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	ids, err := entities("motor", args[0])
	if err != nil {
		return nil, err
	}
	rate, err := floats("motor", args[1])
	if err != nil {
		return nil, err
	}
	id, err := b.w.Joints().ConnectMotor(ids[0], rate[0])
	return b.joint("motor", id, err)
}

// pivot joins two entities at (x, y), or midway between them.
func (b *builder) pivot(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 && len(args) != 4 {
		return nil, tengo.ErrWrongNumArguments
	}
	ids, err := entities("pivot", args[:2]...)
	if err != nil {
		return nil, err
	}
	var at cp.Vector
	if len(args) == 4 {
		nums, err := floats("pivot", args[2:]...)
		if err != nil {
			return nil, err
		}
		at = cp.Vector{X: nums[0], Y: nums[1]}
	} else {
		a, okA := b.w.Registry().Lookup(ids[0])
		z, okZ := b.w.Registry().Lookup(ids[1])
		if !okA || !okZ {
			return b.reject("pivot", fmt.Errorf("pivot endpoint: %w", sandbox.ErrDanglingReference)), nil
		}
		at = a.Position.Lerp(z.Position, 0.5)
	}
	id, err := b.w.Joints().ConnectPivot(ids[0], ids[1], at)
	return b.joint("pivot", id, err)
}

// bridge returns the plank ids.
func (b *builder) bridge(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	ids, err := entities("bridge", args...)
	if err != nil {
		return nil, err
	}
	res, err := b.w.Bridge().Build(ids[0], ids[1])
	if err != nil {
		return b.fail("bridge", err)
	}
	b.res.Entities += len(res.Planks)
	b.res.Joints += len(res.Joints)
	planks := make([]tengo.Object, 0, len(res.Planks))
	for _, id := range res.Planks {
		planks = append(planks, &tengo.Int{Value: int64(id)})
	}
	return &tengo.Array{Value: planks}, nil
}

func (b *builder) mode(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	name, ok := tengo.ToString(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "mode", Expected: "string", Found: args[0].TypeName()}
	}
	m, err := sandbox.ParseMode(strings.TrimSpace(name))
	if err != nil {
		return b.reject("mode", err), nil
	}
	b.w.SetMode(m)
	return tengo.TrueValue, nil
}

func (b *builder) remove(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	ids, err := entities("delete", args...)
	if err != nil {
		return nil, err
	}
	if b.w.Delete(ids[0]) {
		return tengo.TrueValue, nil
	}
	return tengo.FalseValue, nil
}

// position returns [x, y] of a live entity.
func (b *builder) position(args ...tengo.Object) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	ids, err := entities("position", args...)
	if err != nil {
		return nil, err
	}
	e, ok := b.w.Registry().Lookup(ids[0])
	if !ok {
		return tengo.UndefinedValue, nil
	}
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: e.Position.X}, &tengo.Float{Value: e.Position.Y}}}, nil
}

func (b *builder) entity(fn string, id ecs.Entity, err error) (tengo.Object, error) {
	if err != nil {
		return b.fail(fn, err)
	}
	b.res.Entities++
	return &tengo.Int{Value: int64(id)}, nil
}

func (b *builder) joint(fn string, id sandbox.JointID, err error) (tengo.Object, error) {
	if err != nil {
		return b.fail(fn, err)
	}
	b.res.Joints++
	return &tengo.Int{Value: int64(id)}, nil
}

// fail aborts the script on allocation errors and turns the rest into
// tengo error values.
func (b *builder) fail(fn string, err error) (tengo.Object, error) {
	if errors.Is(err, sandbox.ErrEngineAllocation) {
		b.fatal = err
		b.log.Error("scene aborted", zap.String("call", fn), zap.Error(err))
		return nil, err
	}
	return b.reject(fn, err), nil
}

func (b *builder) reject(fn string, err error) tengo.Object {
	b.res.Rejected++
	b.log.Warn("scene call rejected", zap.String("call", fn), zap.Error(err))
	return &tengo.Error{Value: &tengo.String{Value: fmt.Sprintf("%s: %v", fn, err)}}
}

func floats(fn string, args ...tengo.Object) ([]float64, error) {
	out := make([]float64, len(args))
	for i, arg := range args {
		v, ok := tengo.ToFloat64(arg)
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{
				Name:     fmt.Sprintf("%s arg %d", fn, i+1),
				Expected: "int/float",
				Found:    arg.TypeName(),
			}
		}
		out[i] = v
	}
	return out, nil
}

func entities(fn string, args ...tengo.Object) ([]ecs.Entity, error) {
	out := make([]ecs.Entity, len(args))
	for i, arg := range args {
		v, ok := tengo.ToInt64(arg)
		if !ok || v < 0 {
			return nil, tengo.ErrInvalidArgumentType{
				Name:     fmt.Sprintf("%s arg %d", fn, i+1),
				Expected: "entity id",
				Found:    arg.TypeName(),
			}
		}
		out[i] = ecs.Entity(v)
	}
	return out, nil
}
