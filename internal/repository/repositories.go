// Package repository holds the data access layer.
//
// Services depend on the repositories container rather than on a concrete
// store, so handlers and services stay untouched if contacts move to a
// database later.
package repository

// Repositories is a container for all repository instances.
type Repositories struct {
	Contact *ContactRepository
}

// NewRepositories constructs the repository container.
func NewRepositories() *Repositories {
	return &Repositories{
		Contact: NewContactRepository(),
	}
}
