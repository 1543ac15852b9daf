package ledger

// Rent parameters matching the Solana runtime defaults, so reclaimed storage
// allocations observed when accounts close line up with mainnet behavior.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/rent.rs
const (
	defaultLamportsPerByteYear = 3480
	defaultExemptionThreshold  = 2
	accountStorageOverhead     = 128
)

// MinimumBalanceForRentExemption returns the balance an account of the given
// data size must carry to be exempt from rent collection.
func MinimumBalanceForRentExemption(space int) uint64 {
	return uint64(accountStorageOverhead+space) * defaultLamportsPerByteYear * defaultExemptionThreshold
}
