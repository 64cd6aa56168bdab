package utils

import (
	"github.com/go-gl/mathgl/mgl32"
)

// input in radians, vector rotated around X first, then Y, then Z
func EulerToQuat(v mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(v[2], v[1], v[0], mgl32.ZYX).Normalize()
}
