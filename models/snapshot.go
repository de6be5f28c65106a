package models

// NodeView is the presentation view of a node
type NodeView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Cost       float64     `json:"cost"`
	State      UnlockState `json:"state"`
	Affordable bool        `json:"affordable"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
}

// RopeView is the presentation view of an edge rope
type RopeView struct {
	ID     string      `json:"id"`
	Source string      `json:"source"`
	Target string      `json:"target"`
	State  UnlockState `json:"state"`
	Points []Point     `json:"points"`
}

// Snapshot is everything the presentation layer needs to draw one frame
type Snapshot struct {
	Session string     `json:"session"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Balance float64    `json:"balance"`
	Nodes   []NodeView `json:"nodes"`
	Ropes   []RopeView `json:"ropes"`
}

// FindNode returns the view of a node by ID
func (s *Snapshot) FindNode(id string) (NodeView, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}
