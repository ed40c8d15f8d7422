// Package render draws the window pool with OpenGL instancing.
//
// Each registered drawable gets a VAO holding its mesh and an instance buffer
// sized to the pool's capacity. Every frame only the slot range the pool
// marked dirty is re-uploaded, then the mesh is drawn once for all live
// slots.
package render

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/snjsomnath/threejsEditor-sub001/internal/memory"
	"github.com/snjsomnath/threejsEditor-sub001/internal/mesh"
	"github.com/snjsomnath/threejsEditor-sub001/internal/palette"
)

const (
	floatSize      = 4
	vertexStride   = mesh.FloatsPerVertex * floatSize
	instanceStride = 16 * floatSize

	attribPosition = 0
	attribNormal   = 1
	attribModel    = 2 // four consecutive vec4 columns
)

// Renderer implements memory.Scene on the current GL context.
type Renderer struct {
	shaderManager *ShaderManager
	palette       palette.Palette
	items         map[*memory.Drawable]*instanced
	stats         Stats
}

type instanced struct {
	drawable    *memory.Drawable
	vao         uint32
	meshVBO     uint32
	instanceVBO uint32
	vertexCount int32
}

// Stats tracks rendering performance metrics.
type Stats struct {
	DrawCalls      int     // instanced draws in the last frame
	Instances      int     // instances submitted in the last frame
	UploadedBytes  int     // instance bytes re-uploaded in the last frame
	LastDrawTimeUs float64 // time spent in last Draw() call in microseconds
}

// NewRenderer compiles the shaders; a GL context must be current.
func NewRenderer(p palette.Palette) (*Renderer, error) {
	sm, err := NewShaderManager()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		shaderManager: sm,
		palette:       p,
		items:         make(map[*memory.Drawable]*instanced),
	}, nil
}

// AddInstanced creates the GPU buffers for d and uploads its live instances.
func (r *Renderer) AddInstanced(d *memory.Drawable) error {
	if _, ok := r.items[d]; ok {
		return fmt.Errorf("drawable %s already registered", d)
	}
	if d.Mesh == nil || d.Mesh.VertexCount() == 0 {
		return fmt.Errorf("drawable %s has no geometry", d.Layer)
	}

	it := &instanced{drawable: d, vertexCount: int32(d.Mesh.VertexCount())}
	gl.GenVertexArrays(1, &it.vao)
	gl.BindVertexArray(it.vao)

	gl.GenBuffers(1, &it.meshVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, it.meshVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(d.Mesh.Vertices)*floatSize, gl.Ptr(d.Mesh.Vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(attribNormal)
	gl.VertexAttribPointerWithOffset(attribNormal, 3, gl.FLOAT, false, vertexStride, 3*floatSize)

	gl.GenBuffers(1, &it.instanceVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, it.instanceVBO)
	gl.BufferData(gl.ARRAY_BUFFER, d.Capacity()*instanceStride, nil, gl.DYNAMIC_DRAW)
	for col := uint32(0); col < 4; col++ {
		loc := attribModel + col
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, 4, gl.FLOAT, false, instanceStride, uintptr(col*4*floatSize))
		gl.VertexAttribDivisor(loc, 1)
	}
	gl.BindVertexArray(0)

	// Everything live goes up once; later frames only upload dirty ranges.
	d.TakeDirty()
	if insts := d.Instances(); len(insts) > 0 {
		upload(insts, 0, len(insts))
	}
	r.items[d] = it
	return nil
}

// RemoveInstanced releases d's buffers. Unknown drawables are ignored.
func (r *Renderer) RemoveInstanced(d *memory.Drawable) {
	it, ok := r.items[d]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &it.instanceVBO)
	gl.DeleteBuffers(1, &it.meshVBO)
	gl.DeleteVertexArrays(1, &it.vao)
	delete(r.items, d)
}

// Draw uploads pending instance changes and draws every drawable, opaque
// layers first and glass last with blending.
func (r *Renderer) Draw(viewProj mgl32.Mat4) {
	startTime := time.Now()
	stats := Stats{}

	gl.Enable(gl.DEPTH_TEST)
	gl.UseProgram(r.shaderManager.program)
	r.shaderManager.SetViewProj(viewProj)

	for _, it := range r.drawOrder() {
		d := it.drawable
		gl.BindVertexArray(it.vao)
		if lo, hi, ok := d.TakeDirty(); ok {
			gl.BindBuffer(gl.ARRAY_BUFFER, it.instanceVBO)
			upload(d.Instances(), lo, hi)
			stats.UploadedBytes += (hi - lo) * instanceStride
		}

		n := d.Count()
		if n == 0 {
			continue
		}
		glass := d.Layer == memory.LayerGlass
		if glass {
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
			gl.DepthMask(false)
		}
		r.shaderManager.SetTint(r.palette.Tint(d.Layer))
		gl.DrawArraysInstanced(gl.TRIANGLES, 0, it.vertexCount, int32(n))
		if glass {
			gl.DepthMask(true)
			gl.Disable(gl.BLEND)
		}
		stats.DrawCalls++
		stats.Instances += n
	}
	gl.BindVertexArray(0)

	stats.LastDrawTimeUs = float64(time.Since(startTime).Microseconds())
	r.stats = stats
}

// Stats returns the current performance statistics
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Delete releases every buffer and the shader program.
func (r *Renderer) Delete() {
	for d := range r.items {
		r.RemoveInstanced(d)
	}
	r.shaderManager.Delete()
}

// drawOrder puts glass after the opaque layers.
func (r *Renderer) drawOrder() []*instanced {
	out := make([]*instanced, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		return drawRank(out[i].drawable.Layer) < drawRank(out[j].drawable.Layer)
	})
	return out
}

func drawRank(l memory.Layer) int {
	if l == memory.LayerGlass {
		return memory.NumLayers
	}
	return int(l)
}

// upload writes slots [lo, hi) into the bound instance buffer.
func upload(insts []mgl32.Mat4, lo, hi int) {
	gl.BufferSubData(gl.ARRAY_BUFFER, lo*instanceStride, (hi-lo)*instanceStride, gl.Ptr(&insts[lo][0]))
}
