package codec

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/furniture-core/pkg/scene"
)

// UVSpace is the fixed size of document texture space.
const UVSpace = 16.0

var axisNames = [3]string{"x", "y", "z"}

// axisIndex maps "x", "y", "z" to 0, 1, 2. Unknown axes map to y.
func axisIndex(axis string) int {
	for i, a := range axisNames {
		if a == axis {
			return i
		}
	}
	return 1
}

// ExpandBounds grows the box extents by inflate on every axis.
func ExpandBounds(from, to mgl64.Vec3, inflate float64) (mgl64.Vec3, mgl64.Vec3) {
	d := mgl64.Vec3{inflate, inflate, inflate}
	return from.Sub(d), to.Add(d)
}

// ElementRotation is the single-axis rotation record of an element.
type ElementRotation struct {
	Angle   float64    `json:"angle"`
	Axis    string     `json:"axis"`
	Origin  mgl64.Vec3 `json:"origin"`
	Rescale bool       `json:"rescale,omitempty"`
}

func isZero(v mgl64.Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// EncodeRotation builds the rotation record for b. The second result is the
// full rotation vector, set only when two or more axes are rotated, since the
// single-axis record cannot represent that.
func EncodeRotation(b *scene.Box, exportPivots bool) (*ElementRotation, *mgl64.Vec3) {
	var rot *ElementRotation
	if !isZero(b.Rotation) || (!isZero(b.Origin) && exportPivots) {
		axis := b.RotatedAxis()
		if axis == "" {
			axis = "y"
		}
		rot = &ElementRotation{
			Angle:  b.Rotation[axisIndex(axis)],
			Axis:   axis,
			Origin: b.Origin,
		}
	}
	if b.Rescale {
		if rot == nil {
			axis := b.RotationAxis
			if axis == "" {
				axis = "y"
			}
			rot = &ElementRotation{Axis: axis, Origin: b.Origin}
		}
		rot.Rescale = true
	}

	rotatedAxes := 0
	for _, v := range b.Rotation {
		if v != 0 {
			rotatedAxes++
		}
	}
	if rotatedAxes >= 2 {
		full := b.Rotation
		return rot, &full
	}
	return rot, nil
}

// DecodeRotation applies an element's rotation record to b. A full rotation
// vector takes precedence over the single-axis angle.
func DecodeRotation(b *scene.Box, rot *ElementRotation, rotated *mgl64.Vec3) {
	if rot != nil {
		axis := axisNames[axisIndex(rot.Axis)]
		b.RotationAxis = axis
		b.Rotation = mgl64.Vec3{}
		b.Rotation[axisIndex(axis)] = rot.Angle
		b.Origin = rot.Origin
		b.Rescale = rot.Rescale
	}
	if rotated != nil {
		b.Rotation = *rotated
	}
}

// EncodeUV converts a pixel-space UV rectangle into 16-unit texture space for
// a w×h texture grid.
func EncodeUV(uv [4]float64, w, h int) [4]float64 {
	res := [2]float64{float64(w), float64(h)}
	var out [4]float64
	for i, n := range uv {
		out[i] = n * UVSpace / res[i%2]
	}
	return out
}

// DecodeUV is the inverse of EncodeUV.
func DecodeUV(uv [4]float64, w, h int) [4]float64 {
	res := [2]float64{float64(w), float64(h)}
	var out [4]float64
	for i, n := range uv {
		out[i] = n * res[i%2] / UVSpace
	}
	return out
}

// Envelope is the inclusive coordinate range geometry must stay within.
type Envelope struct {
	Min, Max float64
}

// DefaultEnvelope is the range the game accepts for block models.
var DefaultEnvelope = Envelope{Min: -16, Max: 32}

// Outside reports whether any component of the already inflated bounds leaves
// the envelope.
func (e Envelope) Outside(from, to mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if from[i] < e.Min || from[i] > e.Max || to[i] < e.Min || to[i] > e.Max {
			return true
		}
	}
	return false
}

// Test reports whether b, inflated, overflows the envelope.
func (e Envelope) Test(b *scene.Box) bool {
	from, to := ExpandBounds(b.From, b.To, b.Inflate)
	return e.Outside(from, to)
}

// Move shifts b back inside the envelope, shrinking it only when it is larger
// than the envelope.
func (e Envelope) Move(b *scene.Box) {
	inf := b.Inflate
	for ax := 0; ax < 3; ax++ {
		if overlap := b.To[ax] + inf - e.Max; overlap > 0 {
			b.From[ax] -= overlap
			b.To[ax] -= overlap
			if b.From[ax]-inf < e.Min {
				b.From[ax] = e.Min + inf
			}
			continue
		}
		if overlap := b.From[ax] - inf - e.Min; overlap < 0 {
			b.From[ax] -= overlap
			b.To[ax] -= overlap
			if b.To[ax]+inf > e.Max {
				b.To[ax] = e.Max - inf
			}
		}
	}
}

// Clamp cuts b at the envelope.
func (e Envelope) Clamp(b *scene.Box) {
	inf := b.Inflate
	for ax := 0; ax < 3; ax++ {
		b.From[ax] = mgl64.Clamp(b.From[ax]-inf, e.Min, e.Max) + inf
		b.To[ax] = mgl64.Clamp(b.To[ax]+inf, e.Min, e.Max) - inf
	}
}
