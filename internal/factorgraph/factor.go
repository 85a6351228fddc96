package factorgraph

import (
	"fmt"

	"github.com/Harshitk-cp/skillgraph/internal/gaussian"
)

// Message is the belief most recently sent from a factor to one variable.
type Message struct {
	Name  string
	Value gaussian.Gaussian
}

// Factor relates one or more variables. Slot i binds message i to variable i.
type Factor interface {
	Name() string
	NumMessages() int
	// Variable returns the variable bound to slot i.
	Variable(i int) VariableID
	// Message returns the current outgoing message on slot i.
	Message(i int) gaussian.Gaussian
	// UpdateMessage recomputes message i from the current marginals and
	// returns the change of the bound variable's marginal.
	UpdateMessage(g *Graph, i int) (float64, error)
	// SendMessage multiplies message i into its variable and returns the
	// log normalization of that product.
	SendMessage(g *Graph, i int) (float64, error)
	// LogNormalization is the factor's own contribution to log Z.
	LogNormalization(g *Graph) float64
	ResetMarginals(g *Graph)
}

// Bindings implements the slot bookkeeping shared by all Gaussian factors.
// Concrete factors embed it and add UpdateMessage and LogNormalization.
type Bindings struct {
	name      string
	messages  []Message
	variables []VariableID
}

// NewBindings returns empty bindings for a factor called name.
func NewBindings(name string) Bindings {
	return Bindings{name: name}
}

func (b *Bindings) Name() string     { return b.name }
func (b *Bindings) NumMessages() int { return len(b.messages) }

func (b *Bindings) Variable(i int) VariableID {
	return b.variables[i]
}

func (b *Bindings) Message(i int) gaussian.Gaussian {
	return b.messages[i].Value
}

// SetMessage replaces the value of message i.
func (b *Bindings) SetMessage(i int, value gaussian.Gaussian) {
	b.messages[i].Value = value
}

// Bind appends a slot connecting v with an initial message value.
func (b *Bindings) Bind(g *Graph, v VariableID, initial gaussian.Gaussian) int {
	b.messages = append(b.messages, Message{
		Name:  fmt.Sprintf("message from %s to %s", b.name, g.Variable(v)),
		Value: initial,
	})
	b.variables = append(b.variables, v)
	return len(b.messages) - 1
}

// BindUninformative appends a slot whose message starts uninformative.
func (b *Bindings) BindUninformative(g *Graph, v VariableID) int {
	return b.Bind(g, v, gaussian.Uninformative())
}

// CheckIndex returns ErrInvalidMessageIndex for slots the factor lacks.
func (b *Bindings) CheckIndex(i int) error {
	if i < 0 || i >= len(b.messages) {
		return fmt.Errorf("%s: index %d of %d: %w", b.name, i, len(b.messages), ErrInvalidMessageIndex)
	}
	return nil
}

func (b *Bindings) SendMessage(g *Graph, i int) (float64, error) {
	if err := b.CheckIndex(i); err != nil {
		return 0, err
	}
	v := b.variables[i]
	if err := g.checkVariable(v); err != nil {
		return 0, err
	}
	marginal := g.Value(v)
	msg := b.messages[i].Value
	logZ := gaussian.LogProductNormalization(marginal, msg)
	g.SetValue(v, gaussian.Multiply(marginal, msg))
	return logZ, nil
}

func (b *Bindings) ResetMarginals(g *Graph) {
	for _, v := range b.variables {
		g.Variable(v).ResetToPrior()
	}
}

func (b *Bindings) LogNormalization(*Graph) float64 {
	return 0
}

func (b *Bindings) String() string {
	return b.name
}
