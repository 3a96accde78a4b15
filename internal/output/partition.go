package output

import (
	"path/filepath"

	"github.com/rotisserie/eris"
)

// File names the output file of one partition key.
type File[K ~string] struct {
	Key  K
	Name string
}

// Partition writes each record to the sink of its key. Every key's file is
// created when the partition opens.
type Partition[K ~string, T any] struct {
	order []K
	sinks map[K]*Sink[T]
}

// NewPartition creates one file per key under dir.
func NewPartition[K ~string, T any](dir string, files []File[K]) (*Partition[K, T], error) {
	p := &Partition[K, T]{sinks: make(map[K]*Sink[T], len(files))}
	for _, f := range files {
		if _, dup := p.sinks[f.Key]; dup {
			p.Close() //nolint:errcheck
			return nil, eris.Errorf("output: duplicate partition key %q", f.Key)
		}
		s, err := Create[T](filepath.Join(dir, f.Name))
		if err != nil {
			p.Close() //nolint:errcheck
			return nil, err
		}
		p.order = append(p.order, f.Key)
		p.sinks[f.Key] = s
	}
	return p, nil
}

// Write appends v to the file of key.
func (p *Partition[K, T]) Write(key K, v T) error {
	s, ok := p.sinks[key]
	if !ok {
		return eris.Errorf("output: no file for %q", key)
	}
	return s.Write(v)
}

// Has reports whether key has a file.
func (p *Partition[K, T]) Has(key K) bool {
	_, ok := p.sinks[key]
	return ok
}

// Counts returns rows written per key.
func (p *Partition[K, T]) Counts() map[K]int {
	out := make(map[K]int, len(p.sinks))
	for k, s := range p.sinks {
		out[k] = s.Rows()
	}
	return out
}

// Total is the number of rows written across all keys.
func (p *Partition[K, T]) Total() int {
	n := 0
	for _, s := range p.sinks {
		n += s.Rows()
	}
	return n
}

// Paths lists the files in declaration order.
func (p *Partition[K, T]) Paths() []string {
	out := make([]string, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, p.sinks[k].Path())
	}
	return out
}

// Close closes every file and returns the first error.
func (p *Partition[K, T]) Close() error {
	var first error
	for _, k := range p.order {
		if err := p.sinks[k].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
