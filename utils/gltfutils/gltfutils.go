package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// ExportBinary puts every root node into default scene and writes GLB
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	children := make(map[uint32]bool)
	for _, node := range doc.Nodes {
		for _, child := range node.Children {
			children[child] = true
		}
	}
	for iNode := range doc.Nodes {
		if !children[uint32(iNode)] {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(iNode))
		}
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
