// Package sysvar contains the well known sysvar addresses and the layout of
// the instructions sysvar, which lets a program introspect the batch it's
// executing in.
package sysvar

import (
	"github.com/code-payments/code-dice/pkg/solana"
)

var (
	// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/sysvar/instructions.rs#L33
	InstructionsKey = solana.MustBase58Decode("Sysvar1nstructions1111111111111111111111111")

	// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/sysvar/clock.rs#L11
	ClockKey = solana.MustBase58Decode("SysvarC1ock11111111111111111111111111111111")

	// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
	RentKey = solana.MustBase58Decode("SysvarRent111111111111111111111111111111111")
)
