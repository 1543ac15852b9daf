package marketplace

type InstructionType uint8

const (
	Unknown InstructionType = iota

	InstructionTypeInitializeMarketplace
	InstructionTypeListNft
	InstructionTypeBuyNft
	InstructionTypeCancelNft
)

func putInstructionType(dst []byte, v InstructionType, offset *int) {
	dst[*offset] = uint8(v)
	*offset += 1
}

func getInstructionType(src []byte, dst *InstructionType, offset *int) {
	*dst = InstructionType(src[*offset])
	*offset += 1
}
