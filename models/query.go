package models

// FindNode returns a node by its ID
func (t *TechTree) FindNode(id string) (*Node, bool) {
	if t.byID == nil {
		t.reindex()
	}
	node, ok := t.byID[id]
	return node, ok
}

// IDs returns all node identifiers in load order
func (t *TechTree) IDs() []string {
	ids := make([]string, len(t.Nodes))
	for i, n := range t.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Edges returns one edge per prerequisite → dependent pair, in node load
// order and then prerequisite order. Dangling prerequisites produce no edge.
// Self references and duplicates are kept.
func (t *TechTree) Edges() []Edge {
	var result []Edge
	for _, node := range t.Nodes {
		for _, prereq := range node.Prerequisites {
			if _, ok := t.FindNode(prereq); !ok {
				continue
			}
			result = append(result, Edge{Source: prereq, Target: node.ID})
		}
	}
	return result
}

// Prerequisites returns the known prerequisite nodes of a node
func (t *TechTree) Prerequisites(id string) []*Node {
	node, ok := t.FindNode(id)
	if !ok {
		return nil
	}
	var result []*Node
	for _, prereq := range node.Prerequisites {
		if p, ok := t.FindNode(prereq); ok {
			result = append(result, p)
		}
	}
	return result
}

// DanglingPrerequisites returns the prerequisite identifiers of a node that
// do not resolve to any node in the tree
func (t *TechTree) DanglingPrerequisites(id string) []string {
	node, ok := t.FindNode(id)
	if !ok {
		return nil
	}
	var result []string
	for _, prereq := range node.Prerequisites {
		if _, ok := t.FindNode(prereq); !ok {
			result = append(result, prereq)
		}
	}
	return result
}

// Dependents returns all nodes that list id as a prerequisite
func (t *TechTree) Dependents(id string) []*Node {
	var result []*Node
	for _, node := range t.Nodes {
		for _, prereq := range node.Prerequisites {
			if prereq == id {
				result = append(result, node)
				break
			}
		}
	}
	return result
}

// FilterNodes returns nodes that match the provided filter function
func (t *TechTree) FilterNodes(filter func(*Node) bool) []*Node {
	var result []*Node
	for _, node := range t.Nodes {
		if filter(node) {
			result = append(result, node)
		}
	}
	return result
}
