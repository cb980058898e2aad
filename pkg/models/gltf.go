package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/raster3d/pkg/math3d"
)

// GLTFLoader loads glTF and GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills in smooth normals when the file has none.
	CalculateNormals bool
	// DecodeTextures decodes material base color images into Material.BaseMap.
	DecodeTextures bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		DecodeTextures:   true,
	}
}

// LoadGLB loads a glTF or GLB file with default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// LoadGLBWithTexture loads a file and returns the mesh plus the first
// decodable base color texture. The texture is nil when none is embedded.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, err := LoadGLB(path)
	if err != nil {
		return nil, nil, err
	}
	for _, mat := range mesh.Materials {
		if mat.HasTexture {
			return mesh, mat.BaseMap, nil
		}
	}
	return mesh, nil, nil
}

// Load reads path and merges every triangle primitive into one mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = l.readMaterials(doc, filepath.Dir(path))

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	if l.CalculateNormals && !mesh.HasNormals {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()

	return mesh, nil
}

func (l *GLTFLoader) readMaterials(doc *gltf.Document, dir string) []Material {
	mats := make([]Material, 0, len(doc.Materials))
	for _, gm := range doc.Materials {
		base := [4]float64{1, 1, 1, 1}
		metallic, roughness := 1.0, 1.0
		var texIdx *int
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			base = pbr.BaseColorFactorOrDefault()
			metallic = pbr.MetallicFactorOrDefault()
			roughness = pbr.RoughnessFactorOrDefault()
			if pbr.BaseColorTexture != nil {
				texIdx = &pbr.BaseColorTexture.Index
			}
		}

		mat := MaterialFromPBR(gm.Name, base, metallic, roughness)
		if l.DecodeTextures && texIdx != nil {
			if img, err := decodeTexture(doc, *texIdx, dir); err == nil {
				mat.BaseMap = img
				mat.HasTexture = true
			}
		}
		mats = append(mats, mat)
	}
	return mats
}

func decodeTexture(doc *gltf.Document, texIdx int, dir string) (image.Image, error) {
	if texIdx < 0 || texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return nil, errors.New("texture has no source image")
	}
	imgIdx := *doc.Textures[texIdx].Source
	if imgIdx < 0 || imgIdx >= len(doc.Images) {
		return nil, fmt.Errorf("image %d out of range", imgIdx)
	}

	src := doc.Images[imgIdx]
	var data []byte
	switch {
	case src.BufferView != nil:
		buf, bv, err := bufferView(doc, *src.BufferView)
		if err != nil {
			return nil, err
		}
		if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteOffset+bv.ByteLength > len(buf) {
			return nil, errors.New("image buffer view out of range")
		}
		data = buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case src.URI != "":
		b, err := os.ReadFile(filepath.Join(dir, src.URI))
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		data = b
	default:
		return nil, errors.New("image has no data")
	}

	img, err := decodeImageData(data)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// decodeImageData decodes the PNG and JPEG payloads glTF allows, choosing
// the codec by signature.
func decodeImageData(data []byte) (image.Image, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return png.Decode(bytes.NewReader(data))
	case bytes.HasPrefix(data, []byte{0xff, 0xd8}):
		return jpeg.Decode(bytes.NewReader(data))
	}
	return nil, errors.New("unsupported image encoding")
}

// processMesh appends the geometry of every triangle primitive in m.
// glTF front faces are counter-clockwise, which matches Mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3(doc, idx); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
			mesh.HasNormals = true
		}

		var uvs []math3d.Vec2
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2(doc, idx); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
			mesh.HasUVs = true
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}
		mat := DefaultMaterial()
		if material >= 0 {
			mat = mesh.Materials[material]
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: p, Color: mat.RGBA()}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image
				v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}
		if material >= 0 {
			mesh.HasColors = true
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			mesh.Faces = append(mesh.Faces, Face{
				Indices:  []int{base + indices[i], base + indices[i+1], base + indices[i+2]},
				Material: material,
			})
		}
	}

	return nil
}

// bufferView returns a buffer view and the data of the buffer behind it.
func bufferView(doc *gltf.Document, idx int) ([]byte, *gltf.BufferView, error) {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return nil, nil, fmt.Errorf("buffer view %d out of range", idx)
	}
	bv := doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	return doc.Buffers[bv.Buffer].Data, bv, nil
}

// accessorBytes returns the buffer slice backing an accessor and the byte
// stride between elements.
func accessorBytes(doc *gltf.Document, idx, elemSize int) ([]byte, int, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, 0, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	acr := doc.Accessors[idx]
	if acr.BufferView == nil {
		return nil, 0, 0, errors.New("accessor has no buffer view")
	}
	data, bv, err := bufferView(doc, *acr.BufferView)
	if err != nil {
		return nil, 0, 0, err
	}
	if data == nil {
		return nil, 0, 0, errors.New("buffer has no data")
	}

	stride := bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bv.ByteOffset + acr.ByteOffset
	if start < 0 || acr.Count < 0 || stride < elemSize {
		return nil, 0, 0, errors.New("invalid accessor layout")
	}
	if start > len(data) || acr.Count > 0 && start+(acr.Count-1)*stride+elemSize > len(data) {
		return nil, 0, 0, errors.New("accessor exceeds buffer")
	}
	return data[start:], stride, acr.Count, nil
}

func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

func readVec3(doc *gltf.Document, idx int) ([]math3d.Vec3, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	if t := doc.Accessors[idx].Type; t != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", t)
	}
	if ct := doc.Accessors[idx].ComponentType; ct != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported VEC3 component type %v", ct)
	}
	data, stride, count, err := accessorBytes(doc, idx, 12)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, count)
	for i := range out {
		b := data[i*stride:]
		out[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return out, nil
}

func readVec2(doc *gltf.Document, idx int) ([]math3d.Vec2, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	if t := doc.Accessors[idx].Type; t != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", t)
	}
	if ct := doc.Accessors[idx].ComponentType; ct != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported VEC2 component type %v", ct)
	}
	data, stride, count, err := accessorBytes(doc, idx, 8)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2, count)
	for i := range out {
		b := data[i*stride:]
		out[i] = math3d.V2(readFloat32(b), readFloat32(b[4:]))
	}
	return out, nil
}

func readIndices(doc *gltf.Document, idx int) ([]int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	var size int
	switch doc.Accessors[idx].ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", doc.Accessors[idx].ComponentType)
	}

	data, stride, count, err := accessorBytes(doc, idx, size)
	if err != nil {
		return nil, err
	}
	out := make([]int, count)
	for i := range out {
		b := data[i*stride:]
		switch size {
		case 1:
			out[i] = int(b[0])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(b))
		default:
			out[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return out, nil
}
