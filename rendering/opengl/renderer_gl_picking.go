package opengl

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"dynastyglobe/core"
	"dynastyglobe/logging"
	"dynastyglobe/rendering/opengl/overlay"
)

// handleClick selects a dynasty when a timeline cell is under the cursor and
// otherwise logs the geographic position there.
func (r *Renderer) handleClick(xpos, ypos float64) {
	// Cursor positions are in window coordinates; the camera holds the
	// framebuffer size.
	ww, wh := r.window.GetSize()
	if ww == 0 || wh == 0 {
		return
	}

	if r.timeline != nil && r.opts.OnSelect != nil {
		fx := float32(xpos * float64(r.camera.Width) / float64(ww))
		fy := float32(ypos * float64(r.camera.Height) / float64(wh))
		cells := overlay.Layout(len(r.opts.Keys), r.camera.Width, r.camera.Height)
		if slot := overlay.Hit(cells, fx, fy); slot >= 0 {
			r.opts.OnSelect(slot)
			return
		}
	}

	x := float32(2*xpos/float64(ww) - 1)
	y := float32(1 - 2*ypos/float64(wh))

	geo, ok := r.pick(x, y)
	if !ok {
		return
	}
	logging.Info().
		Float64("lat", geo.Lat).
		Float64("lng", geo.Lng).
		Msg("picked location")
}

// pick casts a ray through normalized device coordinates (x, y) and returns
// the geographic position where it meets the globe.
func (r *Renderer) pick(x, y float32) (core.GeoPoint, bool) {
	origin, dir := pickRay(r.camera.Projection().Mul4(r.camera.View()), x, y)
	hit, ok := raySphereIntersect(origin, dir, r.opts.GlobeRadius)
	if !ok {
		return core.GeoPoint{}, false
	}

	// Undo the globe's spin so the position is in map coordinates.
	local := mgl32.HomogRotate3DY(-r.rotation).Mul4x1(hit.Vec4(1)).Vec3()
	geo, _ := core.SurfaceToLatLng(core.SurfacePoint{
		X: float64(local.X()),
		Y: float64(local.Y()),
		Z: float64(local.Z()),
	})
	return geo, true
}

// pickRay unprojects NDC (x, y) through viewProj into a world-space ray.
func pickRay(viewProj mgl32.Mat4, x, y float32) (mgl32.Vec3, mgl32.Vec3) {
	inv := viewProj.Inv()

	nearWorld := inv.Mul4x1(mgl32.Vec4{x, y, -1.0, 1.0})
	farWorld := inv.Mul4x1(mgl32.Vec4{x, y, 1.0, 1.0})

	nearWorld = nearWorld.Mul(1.0 / nearWorld[3])
	farWorld = farWorld.Mul(1.0 / farWorld[3])

	origin := nearWorld.Vec3()
	dir := farWorld.Vec3().Sub(origin).Normalize()
	return origin, dir
}

// raySphereIntersect returns the nearest hit in front of origin on a sphere
// centred at the origin.
func raySphereIntersect(origin, dir mgl32.Vec3, radius float32) (mgl32.Vec3, bool) {
	a := dir.Dot(dir)
	b := 2.0 * origin.Dot(dir)
	c := origin.Dot(origin) - radius*radius
	discriminant := b*b - 4*a*c

	if discriminant < 0 {
		return mgl32.Vec3{}, false
	}

	sqrtD := float32(math.Sqrt(float64(discriminant)))
	t0 := (-b - sqrtD) / (2.0 * a)
	t1 := (-b + sqrtD) / (2.0 * a)

	t := t0
	if t < 0 {
		t = t1
		if t < 0 {
			return mgl32.Vec3{}, false
		}
	}

	return origin.Add(dir.Mul(t)), true
}
