// Package trial defines the configuration of one benchmark trial and the
// keys derived from it.
//
// A Trial is a plain value: every field is set by the experiment generator
// and never changes afterwards. The harness copies a trial when it needs a
// variant of it (for example the optimal baseline of a heuristic trial).
//
// Keys come in two flavors:
//   - InputKey and ObjectiveKey are additive integer keys. They are cheap
//     and collide by construction; they exist for reproducing result sets
//     that were produced with them.
//   - CompositeKey is a comparable struct of the objective's identity and is
//     the default cache key.
//
// Fingerprint is a content hash over the canonical JSON form of a trial and
// identifies a trial across processes.
package trial
