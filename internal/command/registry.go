package command

// Registry maps canonical command names to commands. Iteration follows
// registration order, which makes alias collisions and help listings
// deterministic.
type Registry struct {
	names    []string
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register sets the command for name. Registering an existing name replaces
// the command but keeps its original position.
func (r *Registry) Register(name string, cmd Command) {
	if _, exists := r.commands[name]; !exists {
		r.names = append(r.names, name)
	}
	r.commands[name] = cmd
}

// Lookup returns the command registered under the exact name.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Resolve finds the command for token. An exact name always wins; otherwise
// the first command, in registration order, claiming token as an alias is
// returned.
func (r *Registry) Resolve(token string) (Command, bool) {
	if cmd, ok := r.commands[token]; ok {
		return cmd, true
	}
	for _, name := range r.names {
		cmd := r.commands[name]
		if cmd.IsAlias(token) {
			return cmd, true
		}
	}
	return nil, false
}

// Names returns the canonical names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Each calls fn for every command in registration order.
func (r *Registry) Each(fn func(name string, cmd Command)) {
	for _, name := range r.names {
		fn(name, r.commands[name])
	}
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.names) }
