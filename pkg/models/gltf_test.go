package models

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.DecodeTextures {
		t.Error("DecodeTextures should default to true")
	}
}

// triangleDocument builds an in-memory document holding one indexed
// triangle: three float VEC3 positions followed by three uint16 indices.
func triangleDocument() *gltf.Document {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	data := make([]byte, 0, 36+6)
	for _, p := range positions {
		for _, c := range p {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(c))
		}
	}
	for _, i := range []uint16{0, 1, 2} {
		data = binary.LittleEndian.AppendUint16(data, i)
	}

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
	}
}

func TestProcessMeshKeepsWinding(t *testing.T) {
	doc := triangleDocument()
	prim := &gltf.Primitive{
		Attributes: map[string]int{gltf.POSITION: 0},
		Indices:    gltf.Index(1),
	}

	mesh := NewMesh("tri")
	if err := NewGLTFLoader().processMesh(doc, &gltf.Mesh{Primitives: []*gltf.Primitive{prim}}, mesh); err != nil {
		t.Fatalf("processMesh() error = %v", err)
	}

	if mesh.VertexCount() != 3 || mesh.FaceCount() != 1 {
		t.Fatalf("got %d vertices, %d faces; want 3, 1", mesh.VertexCount(), mesh.FaceCount())
	}
	if n := mesh.FaceNormal(0); n.Z <= 0 {
		t.Errorf("counter-clockwise glTF triangle should face +Z, got normal %v", n)
	}
	if mesh.HasNormals || mesh.HasUVs {
		t.Error("mesh without NORMAL/TEXCOORD_0 should not report them")
	}
}

func TestReadIndicesRejectsFloat(t *testing.T) {
	doc := triangleDocument()
	if _, err := readIndices(doc, 0); err == nil {
		t.Error("expected error reading float accessor as indices")
	}
}

func TestAccessorBoundsChecked(t *testing.T) {
	doc := triangleDocument()
	doc.Accessors[0].Count = 10
	if _, err := readVec3(doc, 0); err == nil {
		t.Error("expected error for accessor past end of buffer")
	}
}

func TestMalformedReferencesReturnErrors(t *testing.T) {
	tests := []struct {
		name    string
		read    func(doc *gltf.Document) error
		corrupt func(doc *gltf.Document)
	}{
		{
			name:    "accessor index",
			read:    func(doc *gltf.Document) error { _, err := readVec3(doc, 7); return err },
			corrupt: func(*gltf.Document) {},
		},
		{
			name:    "buffer view index",
			read:    func(doc *gltf.Document) error { _, err := readVec3(doc, 0); return err },
			corrupt: func(doc *gltf.Document) { doc.Accessors[0].BufferView = gltf.Index(9) },
		},
		{
			name:    "buffer index",
			read:    func(doc *gltf.Document) error { _, err := readIndices(doc, 1); return err },
			corrupt: func(doc *gltf.Document) { doc.BufferViews[1].Buffer = 5 },
		},
		{
			name:    "image buffer view",
			read:    func(doc *gltf.Document) error { _, err := decodeTexture(doc, 0, "."); return err },
			corrupt: func(doc *gltf.Document) {
				doc.Images = []*gltf.Image{{BufferView: gltf.Index(4)}}
				doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
			},
		},
		{
			name:    "image buffer",
			read:    func(doc *gltf.Document) error { _, err := decodeTexture(doc, 0, "."); return err },
			corrupt: func(doc *gltf.Document) {
				doc.BufferViews[1].Buffer = 3
				doc.Images = []*gltf.Image{{BufferView: gltf.Index(1)}}
				doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := triangleDocument()
			tt.corrupt(doc)
			if err := tt.read(doc); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}
