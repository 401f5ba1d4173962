package dice

import (
	"crypto/ed25519"

	"github.com/code-payments/code-dice/pkg/solana"
)

var (
	VaultPrefix = []byte("vault")
	BetPrefix   = []byte("bet")
)

type GetVaultAddressArgs struct {
	House ed25519.PublicKey
}

func GetVaultAddress(args *GetVaultAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		VaultPrefix,
		args.House,
	)
}

type GetBetAddressArgs struct {
	Vault ed25519.PublicKey
	Seed  Seed
}

func GetBetAddress(args *GetBetAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		BetPrefix,
		args.Vault,
		args.Seed[:],
	)
}

// VerifyVaultAddress checks address against the vault derivation for house
// using a known bump.
func VerifyVaultAddress(address, house ed25519.PublicKey, bump uint8) bool {
	return solana.VerifyProgramAddress(address, PROGRAM_ID, bump, VaultPrefix, house)
}

// VerifyBetAddress checks address against the bet derivation using a known
// bump, typically the one stored in the bet record.
func VerifyBetAddress(address, vault ed25519.PublicKey, seed Seed, bump uint8) bool {
	return solana.VerifyProgramAddress(address, PROGRAM_ID, bump, BetPrefix, vault, seed[:])
}
