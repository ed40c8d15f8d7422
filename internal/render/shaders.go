package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// ShaderManager handles OpenGL shader program compilation, linking, and uniform
// management.
type ShaderManager struct {
	program   uint32
	uViewProj int32
	uTint     int32
	uLightDir int32
}

// Vertex shader. Each instance carries its model matrix in attribute slots
// 2-5; hidden instances have a zero matrix and collapse to a point.
const vertexShaderSource = `
#version 330 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in mat4 aModel;

uniform mat4 uViewProj;

out vec3 vNormal;

void main() {
    vNormal = mat3(aModel) * aNormal;
    gl_Position = uViewProj * aModel * vec4(aPos, 1.0);
}
` + "\x00"

// Fragment shader. Two-sided Lambert over the layer tint.
const fragmentShaderSource = `
#version 330 core
in vec3 vNormal;
out vec4 FragColor;

uniform vec4 uTint;
uniform vec3 uLightDir;

void main() {
    float diffuse = abs(dot(normalize(vNormal), uLightDir));
    FragColor = vec4(uTint.rgb * (0.35 + 0.65 * diffuse), uTint.a);
}
` + "\x00"

// NewShaderManager compiles and links the instancing program and binds it.
func NewShaderManager() (*ShaderManager, error) {
	sm := &ShaderManager{}

	vertexShader, err := sm.compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := sm.compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fragmentShader)

	sm.program = gl.CreateProgram()
	gl.AttachShader(sm.program, vertexShader)
	gl.AttachShader(sm.program, fragmentShader)
	gl.LinkProgram(sm.program)

	var status int32
	gl.GetProgramiv(sm.program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(sm.program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(sm.program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(sm.program)
		return nil, fmt.Errorf("shader linking failed: %s", strings.TrimRight(logText, "\x00"))
	}

	sm.uViewProj = gl.GetUniformLocation(sm.program, gl.Str("uViewProj\x00"))
	sm.uTint = gl.GetUniformLocation(sm.program, gl.Str("uTint\x00"))
	sm.uLightDir = gl.GetUniformLocation(sm.program, gl.Str("uLightDir\x00"))
	gl.UseProgram(sm.program)
	sm.SetLightDir(mgl32.Vec3{0.4, 0.8, 0.45})
	return sm, nil
}

// SetViewProj sets the camera matrix.
func (sm *ShaderManager) SetViewProj(m mgl32.Mat4) {
	gl.UniformMatrix4fv(sm.uViewProj, 1, false, &m[0])
}

// SetTint sets the color of the layer about to be drawn.
func (sm *ShaderManager) SetTint(c [4]float32) {
	gl.Uniform4f(sm.uTint, c[0], c[1], c[2], c[3])
}

// SetLightDir sets the direction towards the light; it is normalized here.
func (sm *ShaderManager) SetLightDir(dir mgl32.Vec3) {
	d := dir.Normalize()
	gl.Uniform3f(sm.uLightDir, d[0], d[1], d[2])
}

// Delete releases the program.
func (sm *ShaderManager) Delete() {
	gl.DeleteProgram(sm.program)
}

// compileShader compiles a single shader from source.
func (sm *ShaderManager) compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader compilation failed: %s", strings.TrimRight(logText, "\x00"))
	}
	return shader, nil
}
