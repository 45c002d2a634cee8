package solana

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
)

// Signer signs routing-service transactions with the wallet key.
type Signer struct {
	wallet *Wallet
}

// NewSigner binds a signer to a wallet.
func NewSigner(wallet *Wallet) *Signer { return &Signer{wallet: wallet} }

// Address returns the signing wallet's address.
func (s *Signer) Address() string { return s.wallet.Address() }

// Sign decodes a serialized unsigned transaction, fills the wallet's signature
// slot and re-serializes it. Every other byte of the payload is preserved.
func (s *Signer) Sign(payload []byte) ([]byte, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(payload))
	if err != nil {
		return nil, fmt.Errorf("unmarshal tx: %w", err)
	}
	if err := s.SignTransaction(tx); err != nil {
		return nil, err
	}
	out, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal tx: %w", err)
	}
	return out, nil
}

// SignTransaction places exactly one signature, at the wallet's signer index.
func (s *Signer) SignTransaction(tx *solana.Transaction) error {
	required := int(tx.Message.Header.NumRequiredSignatures)
	if required == 0 || required > len(tx.Message.AccountKeys) {
		return fmt.Errorf("tx declares %d required signatures for %d accounts", required, len(tx.Message.AccountKeys))
	}
	idx := -1
	for i := 0; i < required; i++ {
		if tx.Message.AccountKeys[i].Equals(s.wallet.pub) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.New("wallet is not a required signer of the route transaction")
	}

	switch len(tx.Signatures) {
	case required:
	case 0:
		tx.Signatures = make([]solana.Signature, required)
	default:
		return fmt.Errorf("tx has %d signature slots, expected %d", len(tx.Signatures), required)
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	sig, err := s.wallet.key.Sign(msg)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	tx.Signatures[idx] = sig
	return nil
}
