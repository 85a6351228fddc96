package factorgraph

import "github.com/Harshitk-cp/skillgraph/internal/gaussian"

// VariableFactory creates variables in a graph, seeding each prior from the
// initializer.
type VariableFactory struct {
	graph            *Graph
	priorInitializer func() gaussian.Gaussian
}

// NewVariableFactory binds a factory to g.
func NewVariableFactory(g *Graph, priorInitializer func() gaussian.Gaussian) *VariableFactory {
	return &VariableFactory{graph: g, priorInitializer: priorInitializer}
}

// CreateBasicVariable adds an unkeyed variable.
func (f *VariableFactory) CreateBasicVariable(name string) VariableID {
	prior := f.priorInitializer()
	return f.graph.AddVariable(Variable{Name: name, Prior: prior, Value: prior})
}

// CreateKeyedVariable adds a variable attributed to key.
func (f *VariableFactory) CreateKeyedVariable(key any, name string) VariableID {
	prior := f.priorInitializer()
	return f.graph.AddVariable(Variable{Name: name, Key: key, Prior: prior, Value: prior})
}
