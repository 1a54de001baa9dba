// Package glgpu implements the gpu interfaces on OpenGL 4.1 core.
// All calls must happen on the thread that owns the GL context.
package glgpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/gpu"
	"github.com/Faultbox/meshview/internal/logger"
)

// Device owns the shared GL context that every panel renders through.
type Device struct {
	log *zap.Logger
}

// NewDevice loads the GL function pointers.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{log: logger.Named("gpu")}
	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)
	return d, nil
}

// CompileProgram compiles vertex and fragment shaders, links them and reads
// back the active input and uniform tables.
func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (*gpu.Program, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := programLog(program)
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("%w: link: %s", gpu.ErrCompile, log)
	}

	p := &gpu.Program{
		ID:         program,
		Attributes: activeAttributes(program),
		Uniforms:   activeUniforms(program),
	}
	d.log.Debug("program linked",
		zap.Uint32("id", program),
		zap.Strings("inputs", p.Inputs()),
		zap.Int("uniforms", len(p.Uniforms)),
	)
	return p, nil
}

// DeleteProgram releases a program.
func (d *Device) DeleteProgram(p *gpu.Program) {
	if p == nil || p.ID == 0 {
		return
	}
	gl.DeleteProgram(p.ID)
	p.ID = 0
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s shader: %s", gpu.ErrCompile, name, strings.TrimRight(string(log), "\x00\n"))
	}

	return shader, nil
}

func programLog(program uint32) string {
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	log := make([]byte, logLen+1)
	gl.GetProgramInfoLog(program, logLen, nil, &log[0])
	return strings.TrimRight(string(log), "\x00\n")
}

func activeAttributes(program uint32) map[string]int32 {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(program, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLen)

	attrs := make(map[string]int32, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveAttrib(program, uint32(i), maxLen+1, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		// Built-ins such as gl_VertexID have no location
		if strings.HasPrefix(name, "gl_") {
			continue
		}
		attrs[name] = gl.GetAttribLocation(program, gl.Str(name+"\x00"))
	}
	return attrs
}

func activeUniforms(program uint32) map[string]int32 {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)

	uniforms := make(map[string]int32, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, uint32(i), maxLen+1, &length, &size, &xtype, &buf[0])
		name := strings.TrimSuffix(string(buf[:length]), "[0]")
		uniforms[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}
	return uniforms
}
