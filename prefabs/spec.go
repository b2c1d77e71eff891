package prefabs

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// KindsFile is the prefab holding every kind's canonical spec.
const KindsFile = "kinds.yaml"

// KindSpec is the canonical geometry and material of one sandbox kind.
type KindSpec struct {
	Body         string     `yaml:"body"`
	Shape        string     `yaml:"shape"`
	Radius       float64    `yaml:"radius"`
	RadiusJitter float64    `yaml:"radius_jitter"`
	Width        float64    `yaml:"width"`
	Height       float64    `yaml:"height"`
	Mass         float64    `yaml:"mass"`
	MassJitter   float64    `yaml:"mass_jitter"`
	Friction     float64    `yaml:"friction"`
	Elasticity   float64    `yaml:"elasticity"`
	Decorative   bool       `yaml:"decorative"`
	Locked       bool       `yaml:"locked"`
	Color        *YAMLColor `yaml:"color"`
}

type KindsSpec struct {
	Kinds map[string]KindSpec `yaml:"kinds"`
}

// Kind returns the named spec.
func (s KindsSpec) Kind(name string) (KindSpec, bool) {
	k, ok := s.Kinds[strings.ToLower(name)]
	return k, ok
}

// Names returns the kind names in sorted order.
func (s KindsSpec) Names() []string {
	names := make([]string, 0, len(s.Kinds))
	for name := range s.Kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every kind for a known body and shape and positive
// geometry where the shape needs it.
func (s KindsSpec) Validate() error {
	if len(s.Kinds) == 0 {
		return fmt.Errorf("prefabs: no kinds defined")
	}
	for _, name := range s.Names() {
		k := s.Kinds[name]
		switch k.Body {
		case "dynamic":
			if k.Mass <= 0 {
				return fmt.Errorf("prefabs: kind %s: dynamic body needs mass", name)
			}
		case "kinematic", "static":
		default:
			return fmt.Errorf("prefabs: kind %s: unknown body %q", name, k.Body)
		}
		switch k.Shape {
		case "circle":
			if k.Radius-k.RadiusJitter <= 0 {
				return fmt.Errorf("prefabs: kind %s: radius %v too small", name, k.Radius)
			}
		case "box":
			if k.Height <= 0 {
				return fmt.Errorf("prefabs: kind %s: box needs height", name)
			}
		default:
			return fmt.Errorf("prefabs: kind %s: unknown shape %q", name, k.Shape)
		}
	}
	return nil
}

// LoadSpec reads name from src and unmarshals it into T.
func LoadSpec[T any](src Source, name string) (T, error) {
	var zero T
	data, err := src.Load(name)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", name, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", name, err)
	}

	return spec, nil
}

// LoadKinds loads and validates the kinds prefab.
func LoadKinds(src Source) (KindsSpec, error) {
	spec, err := LoadSpec[KindsSpec](src, KindsFile)
	if err != nil {
		return KindsSpec{}, err
	}
	if err := spec.Validate(); err != nil {
		return KindsSpec{}, err
	}
	return spec, nil
}

// DecodeSpec converts a loosely typed value, such as a decoded script map,
// into T by round-tripping it through yaml.
func DecodeSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// MarshalYAML writes the color back as #rrggbbaa.
func (c YAMLColor) MarshalYAML() (any, error) {
	if c.Color == nil {
		return nil, nil
	}
	n := color.NRGBAModel.Convert(c.Color).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
}
