package marketplace

type AccountType uint8

const (
	AccountTypeUnknown AccountType = iota

	AccountTypeMarketplace
	AccountTypeListing
)
