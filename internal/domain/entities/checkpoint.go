package entities

// Checkpoint is the last block height a target has fully processed. It is
// persisted under Target.CheckpointKey() in the shared settings table and
// advances one block at a time, never skipping ahead on a gap.
type Checkpoint struct {
	Target      Target
	BlockHeight uint64
}
