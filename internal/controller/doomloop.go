package controller

import (
	"crypto/sha256"
	"encoding/hex"
)

// doomLoopThreshold mirrors the teacher's permission.DoomLoopThreshold: the
// number of identical consecutive calls before a loop is declared stuck.
const doomLoopThreshold = 3

// doomLoopDetector tracks consecutive identical (context, source) fingerprints
// across a single task's iterations, adapted from the teacher's
// permission.DoomLoopDetector but scoped to one task's in-memory run instead
// of a session-keyed map, since a Controller.Run call owns exactly one
// task's iteration history.
type doomLoopDetector struct {
	history []string
}

func newDoomLoopDetector() *doomLoopDetector {
	return &doomLoopDetector{}
}

// check fingerprints prompt+source (the caller passes the task and repair
// context as prompt) and reports whether the last
// doomLoopThreshold calls (including this one) are all identical.
func (d *doomLoopDetector) check(prompt, source string) bool {
	hash := fingerprint(prompt, source)
	d.history = append(d.history, hash)

	if len(d.history) < doomLoopThreshold {
		return false
	}
	tail := d.history[len(d.history)-doomLoopThreshold:]
	for _, h := range tail[1:] {
		if h != tail[0] {
			return false
		}
	}
	return true
}

func fingerprint(prompt, source string) string {
	h := sha256.Sum256([]byte(prompt + "\x00" + source))
	return hex.EncodeToString(h[:])
}
