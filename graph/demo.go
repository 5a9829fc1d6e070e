package graph

import "go-variations/value"

// Demo builds a small composition with a few blendable operators
func Demo() *Memory {
	m := NewMemory("Demo", "user.demo")
	root := m.Root()

	blur := root.AddChild("Blur", "lib.image")
	blur.AddInput("Radius", value.Float(4))
	blur.AddInput("Offset", value.Vec2{0, 0})

	color := root.AddChild("Grade", "lib.image")
	color.AddInput("Tint", value.Vec4{1, 1, 1, 1})
	color.AddInput("Exposure", value.Float(0))

	cam := root.AddChild("Camera", "lib.3d")
	cam.AddInput("Position", value.Vec3{0, 0, -5})
	cam.AddInput("FOV", value.Float(45))

	return m
}
