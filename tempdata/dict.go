// Package tempdata carries short-lived values from one request to the next,
// typically across a POST-redirect-GET. A value read with Get is dropped at
// the end of the request unless it is Set again or Kept; Peek reads without
// consuming.
package tempdata

import (
	"sync"

	"github.com/sicko7947/multipageform"
)

// Dict is the per-request temp data bag
type Dict struct {
	values map[string]any
	read   map[string]struct{} // keys consumed by Get this request
	mu     sync.Mutex
}

// New creates an empty dictionary
func New() *Dict {
	return Load(nil)
}

// Load creates a dictionary from values carried over from the last request
func Load(values map[string]any) *Dict {
	d := &Dict{
		values: make(map[string]any, len(values)),
		read:   make(map[string]struct{}),
	}
	for k, v := range values {
		d.values[k] = v
	}
	return d
}

var _ multipageform.TempData = (*Dict)(nil)

// Get reads a value and marks it for removal at the end of the request
func (d *Dict) Get(key string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, ok := d.values[key]
	if ok {
		d.read[key] = struct{}{}
	}
	return v, ok
}

// Peek reads a value without marking it
func (d *Dict) Peek(key string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, ok := d.values[key]
	return v, ok
}

// Set stores a value; it survives into the next request
func (d *Dict) Set(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.values[key] = value
	delete(d.read, key)
}

// Keep cancels the removal of a value read with Get
func (d *Dict) Keep(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.read, key)
}

// Remove deletes a value
func (d *Dict) Remove(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.values, key)
	delete(d.read, key)
}

// Len returns the number of values currently held
func (d *Dict) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.values)
}

// Retained returns a copy of the values that carry over to the next request
func (d *Dict) Retained() map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]any, len(d.values))
	for k, v := range d.values {
		if _, consumed := d.read[k]; consumed {
			continue
		}
		out[k] = v
	}
	return out
}
