// Package mesh defines parsed mesh data and the vertex attribute vocabulary shared with shaders.
package mesh

// Attribute names. The array stored under name X binds to shader input a_X.
const (
	Position = "position"
	Normal   = "normal"
	TexCoord = "texcoord"
)

// AttributeSpec describes one attribute of the vocabulary.
type AttributeSpec struct {
	Name     string
	Size     int  // Components per vertex
	Required bool // Must be present for the fixed shader pair
}

// Attributes is the fixed attribute vocabulary, in binding order.
var Attributes = []AttributeSpec{
	{Name: Position, Size: 3, Required: true},
	{Name: Normal, Size: 3, Required: true},
	{Name: TexCoord, Size: 2},
}

// InputName returns the shader input an attribute binds to.
func InputName(attr string) string {
	return "a_" + attr
}

// Spec returns the vocabulary entry for an attribute name.
func Spec(name string) (AttributeSpec, bool) {
	for _, a := range Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeSpec{}, false
}

// Group is a run of indices sharing one material.
type Group struct {
	Name     string
	Material string
	First    int
	Count    int
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Data holds flat vertex attribute arrays ready for GPU upload.
// It is not modified after the parser hands it over.
type Data struct {
	Name string

	Position []float32 // 3 per vertex
	Normal   []float32 // 3 per vertex
	TexCoord []float32 // 2 per vertex, optional
	Indices  []uint32  // optional; nil means a non-indexed draw

	Groups    []Group
	Materials []string // Material library files referenced by the source
	Textures  []string // Texture files referenced by the materials
	Missing   []string // Referenced files that could not be resolved

	GeneratedNormals bool
}
