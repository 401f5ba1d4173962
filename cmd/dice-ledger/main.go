package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-dice/pkg/app"
	dice_app "github.com/code-payments/code-dice/pkg/dice/app"
)

func main() {
	if err := app.Run(dice_app.New()); err != nil {
		logrus.StandardLogger().WithError(err).Error("error running dice ledger")
		os.Exit(1)
	}
}
