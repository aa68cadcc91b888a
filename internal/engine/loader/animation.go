package loader

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/engine/anim"
	"github.com/Faultbox/assetdeck/internal/logger"
)

func (c *converter) clips() ([]*anim.Clip, error) {
	clips := make([]*anim.Clip, 0, len(c.doc.Animations))
	for i, ga := range c.doc.Animations {
		var tracks []*anim.Track
		for j, ch := range ga.Channels {
			tr, err := c.track(ga, ch)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d: %w", i, j, err)
			}
			if tr != nil {
				tracks = append(tracks, tr)
			}
		}
		clips = append(clips, anim.NewClip(ga.Name, tracks))
	}
	return clips, nil
}

func (c *converter) track(ga *gltf.Animation, ch *gltf.AnimationChannel) (*anim.Track, error) {
	if ch.Target.Node == nil {
		return nil, nil
	}
	node := *ch.Target.Node
	if node < 0 || node >= len(c.nodes) {
		return nil, fmt.Errorf("target node %d out of range", node)
	}
	if ch.Sampler < 0 || ch.Sampler >= len(ga.Samplers) {
		return nil, fmt.Errorf("sampler %d out of range", ch.Sampler)
	}
	s := ga.Samplers[ch.Sampler]

	tr := &anim.Track{Node: c.nodes[node]}
	switch ch.Target.Path {
	case gltf.TRSTranslation:
		tr.Path = anim.PathTranslation
	case gltf.TRSRotation:
		tr.Path = anim.PathRotation
	case gltf.TRSScale:
		tr.Path = anim.PathScale
	default:
		logger.Debug("skipping unsupported animation path", zap.String("animation", ga.Name))
		return nil, nil
	}
	switch s.Interpolation {
	case gltf.InterpolationStep:
		tr.Interpolation = anim.InterpolationStep
	case gltf.InterpolationCubicSpline:
		tr.Interpolation = anim.InterpolationCubicSpline
	default:
		tr.Interpolation = anim.InterpolationLinear
	}

	in, err := modeler.ReadAccessor(c.doc, acc(c.doc, s.Input), nil)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	times, ok := in.([]float32)
	if !ok {
		return nil, fmt.Errorf("input has type %T", in)
	}

	outAcc := acc(c.doc, s.Output)
	out, err := modeler.ReadAccessor(c.doc, outAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading output: %w", err)
	}
	values, err := flatten(out, outAcc.Normalized)
	if err != nil {
		return nil, err
	}

	want := len(times) * tr.Components()
	if tr.Interpolation == anim.InterpolationCubicSpline {
		want *= 3
	}
	if len(values) < want {
		return nil, fmt.Errorf("output has %d values, want %d", len(values), want)
	}

	tr.Times = times
	tr.Values = values[:want]
	return tr, nil
}

// flatten converts accessor data to a flat float slice, decoding normalized
// integer rotations.
func flatten(data interface{}, normalized bool) ([]float32, error) {
	switch v := data.(type) {
	case [][3]float32:
		out := make([]float32, 0, len(v)*3)
		for _, e := range v {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][4]float32:
		out := make([]float32, 0, len(v)*4)
		for _, e := range v {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][4]int8:
		return normalize4(v, normalized, func(x int8) float32 { return max32(float32(x)/127, -1) })
	case [][4]uint8:
		return normalize4(v, normalized, func(x uint8) float32 { return float32(x) / 255 })
	case [][4]int16:
		return normalize4(v, normalized, func(x int16) float32 { return max32(float32(x)/32767, -1) })
	case [][4]uint16:
		return normalize4(v, normalized, func(x uint16) float32 { return float32(x) / 65535 })
	}
	return nil, fmt.Errorf("unsupported output type %T", data)
}

func normalize4[T int8 | uint8 | int16 | uint16](v [][4]T, normalized bool, conv func(T) float32) ([]float32, error) {
	if !normalized {
		return nil, fmt.Errorf("integer output %T must be normalized", v)
	}
	out := make([]float32, 0, len(v)*4)
	for _, e := range v {
		for _, x := range e {
			out = append(out, conv(x))
		}
	}
	return out, nil
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
