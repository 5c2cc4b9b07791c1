package figma

// NodesResponse represents the response from the Figma nodes API endpoint when fetching specific nodes.
// It contains file metadata and a map of node IDs to their corresponding NodeData; ids that do not
// exist in the file map to nil.
type NodesResponse struct {
	Name         string               `json:"name"`
	LastModified string               `json:"lastModified"`
	Version      string               `json:"version"`
	Nodes        map[string]*NodeData `json:"nodes"`
}

// NodeData wraps a node with its document structure.
type NodeData struct {
	Document Node `json:"document"`
}

// ImagesResponse is the response of the image render endpoint: a map of node ID to
// the URL of the rendered image. A node that could not be rendered maps to an empty URL.
type ImagesResponse struct {
	Err    string            `json:"err,omitempty"`
	Images map[string]string `json:"images"`
}

// Node represents a single element in the Figma document tree hierarchy.
// Only the properties the exporter reads are decoded.
type Node struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Type                string     `json:"type"`
	Children            []Node     `json:"children,omitempty"`
	Fills               []Paint    `json:"fills,omitempty"`
	AbsoluteBoundingBox *Rectangle `json:"absoluteBoundingBox,omitempty"`
}

// Rectangle represents a bounding box with position (X, Y) and dimensions (Width, Height).
// Used to define the absolute position and size of nodes in the Figma canvas.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Color represents an RGBA color in Figma's format with values ranging from 0 to 1.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Paint represents a fill or stroke applied to a Figma node.
// The API omits "visible" for visible paints.
type Paint struct {
	Type    string `json:"type"`
	Visible *bool  `json:"visible,omitempty"`
	Color   *Color `json:"color,omitempty"`
}

// IsVisible reports whether the paint is rendered.
func (p Paint) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}
