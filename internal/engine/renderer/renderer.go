// Package renderer draws viewer scenes with OpenGL 4.1.
package renderer

import (
	"fmt"
	"image"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/engine/camera"
	"github.com/Faultbox/assetdeck/internal/engine/renderer/shaders"
	"github.com/Faultbox/assetdeck/internal/engine/scene"
	"github.com/Faultbox/assetdeck/internal/engine/shader"
	"github.com/Faultbox/assetdeck/internal/engine/shadow"
	"github.com/Faultbox/assetdeck/internal/logger"
	"github.com/Faultbox/assetdeck/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width         int
	Height        int
	ShadowMapSize int32
	Exposure      float32
}

var (
	glOnce sync.Once
	glErr  error
)

// initGL loads the GL function pointers once per process.
func initGL() error {
	glOnce.Do(func() {
		if glErr = gl.Init(); glErr != nil {
			return
		}
		logger.Info("OpenGL initialized",
			zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
			zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))
	})
	return glErr
}

// Renderer draws scenes into the current GL context. Every GPU resource it
// creates is freed by Release; mesh buffers are also freed as soon as their
// geometry is disposed.
type Renderer struct {
	config Config

	mesh  *shader.Program
	depth *shader.Program
	line  *shader.Program

	shadows *shadow.Map // nil when the depth map is unavailable

	meshes   map[*scene.Geometry]*gpuMesh
	textures map[*image.RGBA]uint32
	model    *scene.Node

	grid    *lineBatch
	gridSrc *scene.Grid
	bones   *lineBatch

	released bool
}

// New creates a renderer. A GL context must be current.
func New(cfg Config) (*Renderer, error) {
	if err := initGL(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if cfg.Exposure <= 0 {
		cfg.Exposure = 1
	}

	r := &Renderer{
		config:   cfg,
		meshes:   make(map[*scene.Geometry]*gpuMesh),
		textures: make(map[*image.RGBA]uint32),
	}

	var err error
	if r.mesh, err = shader.New("mesh", shaders.MeshVertexShader, shaders.MeshFragmentShader); err != nil {
		r.Release()
		return nil, err
	}
	if r.depth, err = shader.New("depth", shaders.DepthVertexShader, shaders.DepthFragmentShader); err != nil {
		r.Release()
		return nil, err
	}
	if r.line, err = shader.New("line", shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		r.Release()
		return nil, err
	}

	if r.shadows, err = shadow.NewMap(cfg.ShadowMapSize); err != nil {
		logger.Warn("shadows disabled", zap.Error(err))
		r.shadows = nil
	}

	r.grid = newLineBatch()
	r.bones = newLineBatch()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	logger.Debug("renderer created",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("shadows", r.shadows != nil))
	return r, nil
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Draw renders one frame of sc seen through cam.
func (r *Renderer) Draw(sc *scene.Scene, cam *camera.Perspective) {
	if r.released {
		return
	}
	if m := sc.Model(); m != r.model {
		r.dropTextures()
		r.model = m
	}

	items := visibleMeshes(sc.Root)
	rig := buildLightRig(sc)

	lightViewProj := math.Identity()
	shadowed := false
	if r.shadows != nil && rig.shadowIndex >= 0 {
		bounds := casterBounds(items)
		if !bounds.IsEmpty() {
			light := sc.Lights[rig.shadowIndex]
			lightViewProj = shadow.LightMatrix(light.Direction(), bounds)
			r.depthPass(items, lightViewProj)
			shadowed = true
		}
	}

	gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	bg := sc.Background
	gl.ClearColor(bg.R, bg.G, bg.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	viewProj := cam.ProjectionMatrix().Mul(cam.ViewMatrix())
	r.meshPass(items, rig, viewProj, lightViewProj, shadowed)
	r.linePass(sc, viewProj)

	gl.BindVertexArray(0)
}

func (r *Renderer) depthPass(items []drawItem, lightViewProj math.Mat4) {
	r.shadows.Bind()
	r.depth.Use()
	gl.UniformMatrix4fv(r.depth.Uniform("uLightViewProj"), 1, false, &lightViewProj[0])

	for _, it := range items {
		if !it.mesh.CastShadow {
			continue
		}
		r.setTransform(r.depth, it)
		r.gpu(it.mesh.Geometry).draw()
	}
	r.shadows.Unbind()
}

func (r *Renderer) meshPass(items []drawItem, rig lightRig, viewProj, lightViewProj math.Mat4, shadowed bool) {
	p := r.mesh
	p.Use()
	gl.UniformMatrix4fv(p.Uniform("uViewProj"), 1, false, &viewProj[0])
	gl.UniformMatrix4fv(p.Uniform("uLightViewProj"), 1, false, &lightViewProj[0])
	gl.Uniform3f(p.Uniform("uAmbient"), rig.ambient[0], rig.ambient[1], rig.ambient[2])
	gl.Uniform1i(p.Uniform("uLightCount"), rig.count)
	if rig.count > 0 {
		gl.Uniform3fv(p.Uniform("uLightDir"), rig.count, &rig.dirs[0])
		gl.Uniform3fv(p.Uniform("uLightRadiance"), rig.count, &rig.radiance[0])
	}
	gl.Uniform1i(p.Uniform("uShadowLight"), rig.shadowIndex)
	gl.Uniform1f(p.Uniform("uExposure"), r.config.Exposure)

	gl.Uniform1i(p.Uniform("uMap"), 0)
	gl.Uniform1i(p.Uniform("uShadowMap"), 1)
	if shadowed {
		r.shadows.BindTexture(gl.TEXTURE1)
	}

	for _, it := range items {
		mat := material(it.mesh)
		if mat.Wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		} else {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		}
		if mat.DoubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.BACK)
		}

		gl.Uniform3f(p.Uniform("uBaseColor"), mat.Color.R, mat.Color.G, mat.Color.B)
		if tex := r.texture(mat.Map); tex != 0 {
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, tex)
			gl.Uniform1i(p.Uniform("uHasMap"), 1)
		} else {
			gl.Uniform1i(p.Uniform("uHasMap"), 0)
		}
		gl.Uniform1i(p.Uniform("uReceiveShadow"), boolInt(shadowed && it.mesh.ReceiveShadow))

		r.setTransform(p, it)
		r.gpu(it.mesh.Geometry).draw()
	}

	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.Disable(gl.CULL_FACE)
}

// linePass draws the grid, then the skeleton over everything else.
func (r *Renderer) linePass(sc *scene.Scene, viewProj math.Mat4) {
	r.line.Use()
	gl.UniformMatrix4fv(r.line.Uniform("uViewProj"), 1, false, &viewProj[0])

	if sc.Grid != r.gridSrc {
		r.gridSrc = sc.Grid
		var lines []scene.LineVertex
		if sc.Grid != nil {
			lines = sc.Grid.Lines()
		}
		r.grid.set(lines)
	}
	r.grid.draw()

	if sk := sc.Skeleton; sk != nil && sk.Visible && !sk.Empty() {
		r.bones.set(sk.Lines())
		gl.Disable(gl.DEPTH_TEST)
		r.bones.draw()
		gl.Enable(gl.DEPTH_TEST)
	}
}

// setTransform uploads the model matrix and, for skinned meshes, the joint
// palette.
func (r *Renderer) setTransform(p *shader.Program, it drawItem) {
	world := it.node.World()
	gl.UniformMatrix4fv(p.Uniform("uModel"), 1, false, &world[0])

	skinned := it.mesh.Skin != nil && r.gpu(it.mesh.Geometry).skinned
	gl.Uniform1i(p.Uniform("uSkinned"), boolInt(skinned))
	if skinned {
		palette := jointPalette(it.mesh.Skin, world)
		if len(palette) > 0 {
			gl.UniformMatrix4fv(p.Uniform("uJoints"), int32(len(palette)/16), false, &palette[0])
		}
	}
}

// gpu returns the buffers for g, uploading them on first use.
func (r *Renderer) gpu(g *scene.Geometry) *gpuMesh {
	if m, ok := r.meshes[g]; ok {
		return m
	}
	m := uploadMesh(g)
	r.meshes[g] = m
	g.OnDispose(func() { r.freeMesh(g) })
	return m
}

func (r *Renderer) freeMesh(g *scene.Geometry) {
	if m, ok := r.meshes[g]; ok {
		m.free()
		delete(r.meshes, g)
	}
}

// texture returns the GL texture for img, uploading it on first use.
func (r *Renderer) texture(img *image.RGBA) uint32 {
	if img == nil || len(img.Pix) == 0 {
		return 0
	}
	if id, ok := r.textures[img]; ok {
		return id
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)

	r.textures[img] = id
	return id
}

func (r *Renderer) dropTextures() {
	for img, id := range r.textures {
		gl.DeleteTextures(1, &id)
		delete(r.textures, img)
	}
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels, width, height
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// Release frees every GPU resource. Later calls, and draws, do nothing.
func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true

	for g, m := range r.meshes {
		m.free()
		delete(r.meshes, g)
	}
	r.dropTextures()
	for _, b := range []*lineBatch{r.grid, r.bones} {
		if b != nil {
			b.free()
		}
	}
	for _, p := range []*shader.Program{r.mesh, r.depth, r.line} {
		if p != nil {
			p.Delete()
		}
	}
	if r.shadows != nil {
		r.shadows.Destroy()
	}
	logger.Debug("renderer released")
}

func material(m *scene.Mesh) *scene.Material {
	if len(m.Materials) > 0 && m.Materials[0] != nil {
		return m.Materials[0]
	}
	return defaultMaterial
}

var defaultMaterial = scene.NewMaterial("default", math.Color{R: 1, G: 1, B: 1})

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
