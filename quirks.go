package chirp8

// Quirks selects between historically divergent instruction semantics.
// The set is fixed at construction and applied uniformly for the life
// of the machine.
type Quirks uint8

const (
	// QuirkShiftWithVy makes 8xy6/8xyE copy Vy into Vx before shifting
	// (COSMAC VIP lineage). The default shifts Vx in place.
	QuirkShiftWithVy Quirks = 1 << iota
	// QuirkJumpUsesVx makes Bnnn jump to xnn+Vx instead of nnn+V0.
	QuirkJumpUsesVx
	// QuirkVfReset makes AND/OR/XOR clobber VF with 0.
	QuirkVfReset
	// QuirkMemoryMovesIndex makes Fx55/Fx65 leave I pointing past the
	// transferred block.
	QuirkMemoryMovesIndex
	// QuirkClipSprites clips sprites at the display edges instead of
	// wrapping the coordinates modulo the grid dimensions.
	QuirkClipSprites
	// QuirkIgnoreUnknownOpcodes executes unrecognized instructions as
	// no-ops instead of halting with UnknownOpCodeError.
	QuirkIgnoreUnknownOpcodes
)

func (q Quirks) has(flag Quirks) bool {
	return q&flag != 0
}
