// Copyright (c) 2025 by Marko Gaćeša.
// Licensed under the Apache License, Version 2.0.
// See the LICENSE file or http://www.apache.org/licenses/LICENSE-2.0 for details.

package message

import "math"

// Vec3 is a position, direction or a set of Euler angles (pitch, yaw, roll) in degrees.
type Vec3 [3]float32

const (
	// CoordScale is the number of wire units per world unit.
	CoordScale = 8

	// AngleStep is the resolution of an angle on the wire, in degrees.
	AngleStep = 360.0 / 256.0
)

// EncodeCoord quantizes a world coordinate to 1/8 unit. Values outside of ±4096 saturate.
func EncodeCoord(v float32) int16 {
	q := math.Round(float64(v) * CoordScale)
	if q > math.MaxInt16 {
		return math.MaxInt16
	}
	if q < math.MinInt16 {
		return math.MinInt16
	}
	return int16(q)
}

func DecodeCoord(v int16) float32 {
	return float32(v) / CoordScale
}

// EncodeAngle quantizes an angle in degrees to a single byte, so that the full byte range covers 360°.
func EncodeAngle(deg float32) int8 {
	q := int64(math.Round(float64(deg) * 256 / 360))
	return int8(uint8(q & 0xFF))
}

// DecodeAngle returns the angle in degrees, in the range [-180, 180).
func DecodeAngle(v int8) float32 {
	return float32(v) * AngleStep
}
