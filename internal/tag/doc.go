// Package tag implements string-tag addressing for scheduler-managed objects.
//
// Tags are the only addressing mechanism in metronome: bulk commands (pause,
// resume, stop, block), message delivery, and queries all resolve through the
// Registry. The reserved wildcard tag "*" addresses every tracked object.
//
// Tags prefixed with "_" are non-cascading: when a stopped routine's children
// are promoted, they inherit every parent tag except non-cascading ones.
//
// CANONICALIZATION:
// Tags are normalized to Unicode NFC before bucketing, so two visually
// identical tags always address the same bucket regardless of how the caller
// composed them.
package tag
