package actorkit

// Producer constructs a new Actor instance; the engine calls it once per
// Spawn so each actor gets fresh, unshared state.
type Producer func() Actor

// Props configures how an actor is created.
type Props struct {
	producer Producer
}

// NewProps wraps a Producer in a Props.
func NewProps(producer Producer) *Props {
	if producer == nil {
		panic("actorkit: producer cannot be nil")
	}
	return &Props{producer: producer}
}

func (p *Props) Produce() Actor { return p.producer() }
