package vecmath

import "math"

// Segment is a line segment between two endpoints, used for course/arena
// walls (golf bumpers' bounding walls, tron trails, laser-tag cover).
type Segment struct {
	A, B Vec2
}

// ClosestPoint returns the point on the segment nearest to p.
func (s Segment) ClosestPoint(p Vec2) Vec2 {
	ab := s.B.Sub(s.A)
	lenSq := ab.LengthSq()
	if lenSq < 1e-12 {
		return s.A
	}
	t := p.Sub(s.A).Dot(ab) / lenSq
	t = Clamp(t, 0, 1)
	return s.A.Add(ab.Scale(t))
}

// ReflectVelocity reflects vel off a surface whose normal is `normal`
// (expected unit length), scaled by restitution in [0,1].
func ReflectVelocity(vel, normal Vec2, restitution float64) Vec2 {
	n := normal.Normalized()
	d := vel.Dot(n)
	reflected := vel.Sub(n.Scale(2 * d))
	return reflected.Scale(restitution)
}

// CircleSegmentCollision reports whether a circle of the given radius
// centered at `center` overlaps the segment, and if so returns the
// outward normal (from the segment toward the circle) and the closest
// point on the segment (the contact point).
func CircleSegmentCollision(center Vec2, radius float64, seg Segment) (hit bool, normal Vec2, contact Vec2) {
	closest := seg.ClosestPoint(center)
	delta := center.Sub(closest)
	dist := delta.Length()
	if dist >= radius {
		return false, Vec2{}, Vec2{}
	}
	if dist < 1e-9 {
		// Center sits on the segment; fall back to the segment's
		// perpendicular as a stable normal instead of an undefined one.
		dir := seg.B.Sub(seg.A).Normalized()
		normal = Vec2{-dir.Y, dir.X}
	} else {
		normal = delta.Scale(1 / dist)
	}
	return true, normal, closest
}

// CircleCircleCollision reports whether two circles overlap, returning
// the outward normal from b toward a and the penetration depth.
func CircleCircleCollision(a Vec2, ra float64, b Vec2, rb float64) (hit bool, normal Vec2, depth float64) {
	delta := a.Sub(b)
	dist := delta.Length()
	sumR := ra + rb
	if dist >= sumR {
		return false, Vec2{}, 0
	}
	if dist < 1e-9 {
		return true, Vec2{1, 0}, sumR
	}
	return true, delta.Scale(1 / dist), sumR - dist
}

// RaySegmentIntersection returns the distance along the ray (origin +
// t*dir, dir expected unit length) to its intersection with seg, and
// whether one exists within [0, maxDist].
func RaySegmentIntersection(origin, dir Vec2, seg Segment, maxDist float64) (t float64, point Vec2, ok bool) {
	v1 := origin.Sub(seg.A)
	v2 := seg.B.Sub(seg.A)
	v3 := Vec2{-dir.Y, dir.X}

	denom := v2.Dot(v3)
	if math.Abs(denom) < 1e-9 {
		return 0, Vec2{}, false
	}

	tRay := cross(v2, v1) / denom
	tSeg := v1.Dot(v3) / denom

	if tRay < 0 || tRay > maxDist || tSeg < 0 || tSeg > 1 {
		return 0, Vec2{}, false
	}
	return tRay, origin.Add(dir.Scale(tRay)), true
}

func cross(a, b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

// RayCircleIntersection returns the nearest intersection distance of the
// ray (origin + t*dir) with a circle, within [0, maxDist].
func RayCircleIntersection(origin, dir, center Vec2, radius, maxDist float64) (t float64, ok bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.LengthSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	t0 := -b - sqrtDisc
	t1 := -b + sqrtDisc
	candidate := t0
	if candidate < 0 {
		candidate = t1
	}
	if candidate < 0 || candidate > maxDist {
		return 0, false
	}
	return candidate, true
}

// SegmentsIntersect reports whether two segments cross (used by tron's
// wall-collision check).
func SegmentsIntersect(a, b Segment) bool {
	d1 := direction(b.A, b.B, a.A)
	d2 := direction(b.A, b.B, a.B)
	d3 := direction(a.A, a.B, b.A)
	d4 := direction(a.A, a.B, b.B)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(b.A, b.B, a.A) {
		return true
	}
	if d2 == 0 && onSegment(b.A, b.B, a.B) {
		return true
	}
	if d3 == 0 && onSegment(a.A, a.B, b.A) {
		return true
	}
	if d4 == 0 && onSegment(a.A, a.B, b.B) {
		return true
	}
	return false
}

func direction(a, b, c Vec2) float64 { return cross(c.Sub(a), b.Sub(a)) }

func onSegment(a, b, p Vec2) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
