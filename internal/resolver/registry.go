package resolver

// Registry is an ordered, immutable collection of resolvers. Order encodes
// priority: when a discovery collaborator finds a file matching multiple
// resolvers' globs, registry order is the tie-break signal it consults. The
// registry itself makes no selection decision.
type Registry struct {
	resolvers []Resolver
}

// NewRegistry creates a registry preserving the given order.
func NewRegistry(resolvers ...Resolver) *Registry {
	return &Registry{resolvers: append([]Resolver(nil), resolvers...)}
}

// Resolvers returns the resolvers in registry order. The returned slice is a
// copy; mutating it does not affect the registry.
func (r *Registry) Resolvers() []Resolver {
	return append([]Resolver(nil), r.resolvers...)
}

// ForName returns the resolver with the given name.
func (r *Registry) ForName(name string) (Resolver, bool) {
	for _, res := range r.resolvers {
		if res.Details().Name == name {
			return res, true
		}
	}
	return nil, false
}

// Len returns the number of registered resolvers.
func (r *Registry) Len() int {
	return len(r.resolvers)
}
