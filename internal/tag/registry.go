package tag

import (
	"fmt"
	"sort"
)

// Registry maps canonical tag -> set of tracked objects.
//
// The scheduler exclusively owns its Registry and mutates it only during
// frame phases; callers observe it through Count/Exists/Snapshot.
//
// Buckets remember per-object insertion order so enumeration is
// deterministic. Delivery order is contractually unspecified (set
// semantics), but a stable order keeps traces reproducible.
type Registry struct {
	buckets map[string]map[Taggable]int64
	seq     int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		buckets: make(map[string]map[Taggable]int64),
	}
}

// Register adds an object under every one of its tags plus the wildcard.
//
// Registering an object with zero tags, or with any malformed tag, is a
// validation failure: callers must supply at least one well-formed tag.
// On failure nothing is registered.
func (r *Registry) Register(obj Taggable) error {
	if obj == nil {
		return fmt.Errorf("%w: nil taggable", ErrInvalid)
	}
	tags := obj.Tags()
	if len(tags) == 0 {
		return fmt.Errorf("%w: object has no tags", ErrInvalid)
	}
	for _, t := range tags {
		if err := Validate(t); err != nil {
			return err
		}
	}

	r.seq++
	for _, t := range tags {
		r.add(Canonical(t), obj)
	}
	r.add(Wildcard, obj)
	return nil
}

// Unregister removes an object from every one of its tag buckets and the
// wildcard bucket, pruning buckets that become empty. Unknown objects are
// a no-op.
func (r *Registry) Unregister(obj Taggable) {
	if obj == nil {
		return
	}
	for _, t := range obj.Tags() {
		r.remove(Canonical(t), obj)
	}
	r.remove(Wildcard, obj)
}

// Count returns the number of objects under a tag. Unknown tags count 0.
func (r *Registry) Count(t string) int {
	return len(r.buckets[Canonical(t)])
}

// Exists reports whether any object is tracked under a tag.
func (r *Registry) Exists(t string) bool {
	return r.Count(t) > 0
}

// Members returns the objects under a tag in registration order.
// The slice is a copy; callers may mutate the registry while ranging it.
func (r *Registry) Members(t string) []Taggable {
	bucket := r.buckets[Canonical(t)]
	if len(bucket) == 0 {
		return nil
	}
	members := make([]Taggable, 0, len(bucket))
	for obj := range bucket {
		members = append(members, obj)
	}
	sort.Slice(members, func(i, j int) bool {
		return bucket[members[i]] < bucket[members[j]]
	})
	return members
}

// TagCount is one entry of a diagnostic snapshot.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Snapshot returns a copy of the current tag -> count pairs, sorted with
// the wildcard tag first and the rest lexicographic. Diagnostics only.
func (r *Registry) Snapshot() []TagCount {
	out := make([]TagCount, 0, len(r.buckets))
	for t, bucket := range r.buckets {
		out = append(out, TagCount{Tag: t, Count: len(bucket)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tag == Wildcard {
			return true
		}
		if out[j].Tag == Wildcard {
			return false
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func (r *Registry) add(canonical string, obj Taggable) {
	bucket := r.buckets[canonical]
	if bucket == nil {
		bucket = make(map[Taggable]int64)
		r.buckets[canonical] = bucket
	}
	if _, dup := bucket[obj]; !dup {
		bucket[obj] = r.seq
	}
}

func (r *Registry) remove(canonical string, obj Taggable) {
	bucket := r.buckets[canonical]
	if bucket == nil {
		return
	}
	delete(bucket, obj)
	if len(bucket) == 0 {
		delete(r.buckets, canonical)
	}
}
