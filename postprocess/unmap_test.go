package postprocess

import (
	"testing"

	"github.com/swdee/go-poselite"
	"github.com/swdee/go-poselite/preprocess"
)

// near compares floats within tolerance
func near(a, b, epsilon float32) bool {
	diff := a - b
	return diff < epsilon && diff > -epsilon
}

func TestUnmapRoundTrip(t *testing.T) {

	const tolerance = 1e-4

	// mapping a known source coordinate forward into model space and
	// unmapping must reproduce it for every aspect shape
	sources := []struct {
		name string
		w, h int
	}{
		{"square", 640, 640},
		{"wide", 640, 360},
		{"tall", 360, 640},
		{"odd difference", 251, 100},
	}

	points := [][2]float32{
		{0, 0},
		{10, 20},
		{199.5, 99.5},
		{250, 99},
	}

	for _, src := range sources {
		t.Run(src.name, func(t *testing.T) {
			lb := preprocess.NewLetterbox(src.w, src.h, 640, 640)

			scale := lb.ScaleFactor()

			// forward transform of each point into model space
			var kps []poselite.KeyPoint

			for _, pt := range points {
				kps = append(kps, poselite.KeyPoint{
					X:     (pt[0] + float32(lb.XPad())) / scale,
					Y:     (pt[1] + float32(lb.YPad())) / scale,
					Score: 0.7,
				})
			}

			det := poselite.Detection{
				Box: poselite.Box{
					X1: (points[0][0] + float32(lb.XPad())) / scale,
					Y1: (points[0][1] + float32(lb.YPad())) / scale,
					X2: (points[3][0] + float32(lb.XPad())) / scale,
					Y2: (points[3][1] + float32(lb.YPad())) / scale,
				},
				Score:     0.9,
				KeyPoints: kps,
			}

			out := Unmap(det, lb)

			if !near(out.Box.X1, points[0][0], tolerance) ||
				!near(out.Box.Y1, points[0][1], tolerance) ||
				!near(out.Box.X2, points[3][0], tolerance) ||
				!near(out.Box.Y2, points[3][1], tolerance) {
				t.Errorf("box round trip = %+v, want corners (%v,%v)-(%v,%v)",
					out.Box, points[0][0], points[0][1], points[3][0], points[3][1])
			}

			for i, kp := range out.KeyPoints {
				if !near(kp.X, points[i][0], tolerance) || !near(kp.Y, points[i][1], tolerance) {
					t.Errorf("keypoint %d round trip = (%v,%v), want (%v,%v)",
						i, kp.X, kp.Y, points[i][0], points[i][1])
				}

				if kp.Score != 0.7 {
					t.Errorf("keypoint %d score changed: %v", i, kp.Score)
				}
			}
		})
	}
}

func TestUnmapScenario(t *testing.T) {

	// source 400x300 into a 640 model, square side 400, 50 pixels of
	// padding top and bottom, scale 0.625.  model coordinate 320 on
	// each axis unmaps to (200, 150) in source space
	lb := preprocess.NewLetterbox(400, 300, 640, 640)

	if lb.ScaleFactor() != 0.625 || lb.YPad() != 50 || lb.XPad() != 0 {
		t.Fatalf("letterbox = scale %v xPad %d yPad %d, want 0.625/0/50",
			lb.ScaleFactor(), lb.XPad(), lb.YPad())
	}

	det := poselite.Detection{
		Box:   poselite.Box{X1: 320, Y1: 320, X2: 384, Y2: 416},
		Score: 0.8,
	}

	out := Unmap(det, lb)

	if out.Box.X1 != 200 || out.Box.Y1 != 150 {
		t.Errorf("box start = (%v,%v), want (200,150)", out.Box.X1, out.Box.Y1)
	}

	if out.Box.X2 != 240 || out.Box.Y2 != 210 {
		t.Errorf("box end = (%v,%v), want (240,210)", out.Box.X2, out.Box.Y2)
	}

	// input detection is not mutated
	if det.Box.X1 != 320 {
		t.Error("input detection was modified in place")
	}
}

func TestUnmapNoClamping(t *testing.T) {

	// a raw box extending past the padded region legitimately unmaps
	// outside the source bounds and is left unclamped
	lb := preprocess.NewLetterbox(640, 360, 640, 640)

	det := poselite.Detection{
		Box: poselite.Box{X1: -10, Y1: 0, X2: 700, Y2: 640},
		KeyPoints: []poselite.KeyPoint{
			{X: 0, Y: 0, Score: 0.9},
		},
	}

	out := Unmap(det, lb)

	if out.Box.X1 >= 0 {
		t.Errorf("X1 = %v, want negative", out.Box.X1)
	}

	if out.Box.X2 <= 640 {
		t.Errorf("X2 = %v, want past source width", out.Box.X2)
	}

	// y coordinate 0 in model space sits inside the top padding and
	// unmaps to a negative source coordinate
	if out.KeyPoints[0].Y != -140 {
		t.Errorf("keypoint Y = %v, want -140", out.KeyPoints[0].Y)
	}
}
