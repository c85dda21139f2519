package judgments

// HeldLocks returns the number of per-key locks a memory store still tracks.
func HeldLocks(s Store) int {
	return s.(*memory).heldLocks()
}
