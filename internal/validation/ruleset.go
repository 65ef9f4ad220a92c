package validation

// Validatable is implemented by request payload types that know how to
// validate themselves beyond per-field rules (cross-field checks, business
// constraints). It only runs once every field rule has passed.
//
// Return ValidationErrors (or a single ValidationError) to report field-level
// failures; any other error is reported as one object-level entry.
type Validatable interface {
	Validate() error
}

// FieldRules binds an ordered list of rules to one field of T.
type FieldRules[T any] struct {
	name  string
	get   func(*T) any
	rules []Rule
}

// Field declares the rules of one field. name is the member name reported in
// ValidationErrors and get extracts the field from a decoded value.
//
//	validation.Field("Name", func(r *CreateContactRequest) any { return r.Name },
//		validation.Required(), validation.MaxLength(100))
func Field[T any](name string, get func(*T) any, rules ...Rule) FieldRules[T] {
	return FieldRules[T]{name: name, get: get, rules: rules}
}

// RuleSet is the explicit rule table for T: fields in declaration order,
// each with its rules in declaration order.
type RuleSet[T any] struct {
	fields []FieldRules[T]
}

// NewRuleSet builds the rule table for T.
func NewRuleSet[T any](fields ...FieldRules[T]) *RuleSet[T] {
	return &RuleSet[T]{fields: fields}
}

// Len returns the number of fields with rules.
func (rs *RuleSet[T]) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.fields)
}

// RuleDescriptor is the inspectable form of a Rule.
type RuleDescriptor struct {
	Kind    string `json:"kind"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// FieldDescriptor is the inspectable form of FieldRules.
type FieldDescriptor struct {
	Field string           `json:"field"`
	Rules []RuleDescriptor `json:"rules"`
}

// Describe returns the rule table as plain data.
func (rs *RuleSet[T]) Describe() []FieldDescriptor {
	if rs == nil {
		return nil
	}

	out := make([]FieldDescriptor, 0, len(rs.fields))
	for _, f := range rs.fields {
		d := FieldDescriptor{Field: f.name, Rules: make([]RuleDescriptor, 0, len(f.rules))}
		for _, r := range f.rules {
			d.Rules = append(d.Rules, RuleDescriptor{Kind: r.Kind, Param: r.Param, Message: r.Message})
		}
		out = append(out, d)
	}
	return out
}
