package command

// Option configures a Pipeline
type Option func(*options)

type options struct {
	name       string
	entityName string
}

// WithName names the command in logs and wrapped errors
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithEntityName sets the member name reported for failing rules that carry
// no association
func WithEntityName(name string) Option {
	return func(o *options) { o.entityName = name }
}

func buildOptions(opts []Option) options {
	o := options{name: "command"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
