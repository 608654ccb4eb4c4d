package entities

// Block is the normalized block/ledger returned by every Chain Adapter.
type Block struct {
	Height uint64
	Hash   string
	Txs    []Tx
}

// TxKind discriminates the NormalizedTx union. Downstream logic dispatches
// on Kind, never on shape-poking the payload.
type TxKind string

const (
	TxNativeTransfer TxKind = "NATIVE_TRANSFER"
	TxTokenTransfer  TxKind = "TOKEN_TRANSFER"
	TxMultiOutput    TxKind = "MULTI_OUTPUT"
	TxPayment        TxKind = "PAYMENT"
)

// Tx is a normalized, tagged-union transaction. Exactly one of
// NativeTransfer, TokenTransfer, MultiOutput, or Payment is populated,
// selected by Kind.
type Tx struct {
	Kind TxKind
	Hash string

	NativeTransfer *NativeTransfer
	TokenTransfer  *TokenTransfer
	MultiOutput    *MultiOutput
	Payment        *Payment
}

// NativeTransfer is a value transfer of the chain's base asset.
type NativeTransfer struct {
	From      string
	To        string
	AmountRaw string // base-unit integer, as a decimal string
	Decimals  int
}

// TokenTransfer is a value transfer of a smart-contract-defined asset, or
// (Tron TransferAssetContract only) a legacy TRC-10 asset identified by
// Symbol instead of ContractAddress — Tron nodes never return a
// contract_address for that contract type.
type TokenTransfer struct {
	From            string
	To              string
	ContractAddress string
	Symbol          string
	AmountRaw       string
	Decimals        int
	Standard        NetworkVersion
}

// MultiOutputEntry is one Bitcoin transaction output.
type MultiOutputEntry struct {
	Address       string
	AmountDecimal string // already decimal BTC, per vout[i].value
}

// MultiOutput models the Bitcoin UTXO transaction shape: one transaction may
// credit multiple wallets.
type MultiOutput struct {
	TxID              string
	Outputs           []MultiOutputEntry
	InputFirstAddress string
}

// Payment is an XRP Ledger Payment transaction. AmountDecimal is always
// normalized to the token's decimal form before it reaches downstream code
// — drops-string and issued-currency-object inputs are both resolved inside
// the XRP adapter.
type Payment struct {
	From          string
	To            string
	AmountDecimal string
}
